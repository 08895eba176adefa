package repository

import (
	"context"

	"classroom-subscription/internal/domain/model"
)

// TransactionRepository stores payment audit records.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, t *model.Transaction) error
	// UpsertBySession inserts or replaces the record keyed by the gateway
	// session id, so redelivered confirmation events never double-count.
	UpsertBySession(ctx context.Context, tx Tx, t *model.Transaction) error
	FindBySession(ctx context.Context, tx Tx, sessionID string) (*model.Transaction, error)
	ListByAccount(ctx context.Context, tx Tx, accountID string) ([]*model.Transaction, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Transaction, error)
	DeleteByAccount(ctx context.Context, tx Tx, accountID string) (int, error)
}
