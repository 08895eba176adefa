package repository

import (
	"context"

	"classroom-subscription/internal/domain/model"
)

// ClassRepository covers the classroom surface the lifecycle engine needs:
// roster membership, content listings for cleanup, and the purge pulls.
type ClassRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Class) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Class, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Class, error)
	Delete(ctx context.Context, tx Tx, id string) error

	AddStudent(ctx context.Context, tx Tx, classID, studentID string) error
	RemoveStudent(ctx context.Context, tx Tx, classID, studentID string) error
	// RemoveStudentEverywhere pulls the student out of every roster.
	RemoveStudentEverywhere(ctx context.Context, tx Tx, studentID string) (int, error)

	ListVideos(ctx context.Context, tx Tx, classID string) ([]*model.ClassVideo, error)
	ListFiles(ctx context.Context, tx Tx, classID string) ([]*model.ClassFile, error)
	ListSubmissionsByClass(ctx context.Context, tx Tx, classID string) ([]*model.Submission, error)
	ListSubmissionsByStudent(ctx context.Context, tx Tx, studentID string) ([]*model.Submission, error)
	DeleteSubmissionsByStudent(ctx context.Context, tx Tx, studentID string) (int, error)
}
