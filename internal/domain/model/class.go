package model

import (
	"time"

	"classroom-subscription/internal/domain"

	"github.com/google/uuid"
)

type ClassStatus string

const (
	ClassStatusPending ClassStatus = "pending"
	ClassStatusActive  ClassStatus = "active"
)

type FileKind string

const (
	FileKindPDF  FileKind = "pdf"
	FileKindTask FileKind = "task"
)

// Class groups students with their content. Videos live on the remote video
// platform (opaque ids), files and submissions on the object store.
type Class struct {
	ID          string
	Name        string
	Description string
	Status      ClassStatus
	CreatedAt   time.Time
}

func NewClass(name, description string) (*Class, error) {
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Class{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      ClassStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

type ClassVideo struct {
	ID          string
	ClassID     string
	VideoID     string // remote video platform id
	Name        string
	Description string
	UploadedAt  time.Time
}

type ClassFile struct {
	ID          string
	ClassID     string
	Kind        FileKind
	ObjectID    string // object store key
	URL         string
	Name        string
	Description string
	AddedAt     time.Time
}

type Submission struct {
	ID          string
	FileID      string
	ClassID     string
	StudentID   string
	ObjectID    string
	URL         string
	SubmittedAt time.Time
}

type ClassNote struct {
	ID        string
	ClassID   string
	Msg       string
	CreatedAt time.Time
}
