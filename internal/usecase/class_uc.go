// File: internal/usecase/class_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
)

// ClassUseCase covers the classroom surface the lifecycle needs: roster
// membership and content cleanup. Deleting a class removes its remote
// assets best-effort before dropping the local rows; a failed remote delete
// is logged and never blocks the local change.
type ClassUseCase struct {
	classes repository.ClassRepository
	tm      repository.TransactionManager
	objects adapter.ObjectStore
	videos  adapter.VideoStore
	log     *zerolog.Logger
}

func NewClassUseCase(
	classes repository.ClassRepository,
	tm repository.TransactionManager,
	objects adapter.ObjectStore,
	videos adapter.VideoStore,
	logger *zerolog.Logger,
) *ClassUseCase {
	l := logger.With().Str("component", "ClassUseCase").Logger()
	return &ClassUseCase{classes: classes, tm: tm, objects: objects, videos: videos, log: &l}
}

func (uc *ClassUseCase) Create(ctx context.Context, name, description string) (*model.Class, error) {
	class, err := model.NewClass(name, description)
	if err != nil {
		return nil, err
	}
	if err := uc.classes.Save(ctx, nil, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (uc *ClassUseCase) Get(ctx context.Context, id string) (*model.Class, error) {
	return uc.classes.FindByID(ctx, nil, id)
}

func (uc *ClassUseCase) List(ctx context.Context) ([]*model.Class, error) {
	return uc.classes.ListAll(ctx, nil)
}

func (uc *ClassUseCase) Join(ctx context.Context, classID, studentID string) error {
	if _, err := uc.classes.FindByID(ctx, nil, classID); err != nil {
		return err
	}
	return uc.classes.AddStudent(ctx, nil, classID, studentID)
}

func (uc *ClassUseCase) Kick(ctx context.Context, classID, studentID string) error {
	return uc.classes.RemoveStudent(ctx, nil, classID, studentID)
}

// Delete tears a class down: remote videos and stored objects first
// (best-effort), then the rows.
func (uc *ClassUseCase) Delete(ctx context.Context, classID string) error {
	if _, err := uc.classes.FindByID(ctx, nil, classID); err != nil {
		return err
	}

	videos, err := uc.classes.ListVideos(ctx, nil, classID)
	if err != nil {
		return err
	}
	files, err := uc.classes.ListFiles(ctx, nil, classID)
	if err != nil {
		return err
	}
	subs, err := uc.classes.ListSubmissionsByClass(ctx, nil, classID)
	if err != nil {
		return err
	}

	for _, v := range videos {
		if err := uc.videos.DeleteVideo(ctx, v.VideoID); err != nil {
			uc.log.Warn().Err(err).Str("video_id", v.VideoID).Msg("remote video delete failed")
		}
	}
	for _, f := range files {
		if f.ObjectID == "" {
			continue
		}
		if err := uc.objects.DeleteObject(ctx, f.ObjectID); err != nil {
			uc.log.Warn().Err(err).Str("object_id", f.ObjectID).Msg("remote object delete failed")
		}
	}
	for _, s := range subs {
		if s.ObjectID == "" {
			continue
		}
		if err := uc.objects.DeleteObject(ctx, s.ObjectID); err != nil {
			uc.log.Warn().Err(err).Str("object_id", s.ObjectID).Msg("remote object delete failed")
		}
	}

	// cascades videos, files, submissions, roster and notes
	if err := uc.classes.Delete(ctx, nil, classID); err != nil {
		return err
	}
	uc.log.Info().Str("class_id", classID).Msg("class deleted")
	return nil
}
