package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.ClassRepository = (*PostgresClassRepo)(nil)

type PostgresClassRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresClassRepo(pool *pgxpool.Pool) *PostgresClassRepo {
	return &PostgresClassRepo{pool: pool}
}

func (r *PostgresClassRepo) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	const sql = `
INSERT INTO classes (id, name, description, status, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      description = EXCLUDED.description,
      status      = EXCLUDED.status;
`
	_, err := pick(r.pool, tx).Exec(ctx, sql, c.ID, c.Name, c.Description, string(c.Status), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save class: %w", err)
	}
	return nil
}

func (r *PostgresClassRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	row := pick(r.pool, tx).QueryRow(ctx,
		`SELECT id, name, description, status, created_at FROM classes WHERE id = $1;`, id)
	var c model.Class
	var status string
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &status, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID class: %w", err)
	}
	c.Status = model.ClassStatus(status)
	return &c, nil
}

func (r *PostgresClassRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Class, error) {
	rows, err := pick(r.pool, tx).Query(ctx,
		`SELECT id, name, description, status, created_at FROM classes ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("ListAll classes: %w", err)
	}
	defer rows.Close()
	var out []*model.Class
	for rows.Next() {
		var c model.Class
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = model.ClassStatus(status)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Delete removes the class row; roster, video, file, and submission rows go
// with it via ON DELETE CASCADE. Remote objects are the caller's problem.
func (r *PostgresClassRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM classes WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete class: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresClassRepo) AddStudent(ctx context.Context, tx repository.Tx, classID, studentID string) error {
	const sql = `
INSERT INTO class_students (class_id, student_id)
VALUES ($1, $2)
ON CONFLICT (class_id, student_id) DO NOTHING;
`
	_, err := pick(r.pool, tx).Exec(ctx, sql, classID, studentID)
	if err != nil {
		return fmt.Errorf("AddStudent: %w", err)
	}
	return nil
}

func (r *PostgresClassRepo) RemoveStudent(ctx context.Context, tx repository.Tx, classID, studentID string) error {
	ct, err := pick(r.pool, tx).Exec(ctx,
		`DELETE FROM class_students WHERE class_id = $1 AND student_id = $2;`, classID, studentID)
	if err != nil {
		return fmt.Errorf("RemoveStudent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresClassRepo) RemoveStudentEverywhere(ctx context.Context, tx repository.Tx, studentID string) (int, error) {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM class_students WHERE student_id = $1;`, studentID)
	if err != nil {
		return 0, fmt.Errorf("RemoveStudentEverywhere: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *PostgresClassRepo) ListVideos(ctx context.Context, tx repository.Tx, classID string) ([]*model.ClassVideo, error) {
	const sql = `
SELECT id, class_id, video_id, name, description, uploaded_at
  FROM class_videos
 WHERE class_id = $1
 ORDER BY uploaded_at;
`
	rows, err := pick(r.pool, tx).Query(ctx, sql, classID)
	if err != nil {
		return nil, fmt.Errorf("ListVideos: %w", err)
	}
	defer rows.Close()
	var out []*model.ClassVideo
	for rows.Next() {
		var v model.ClassVideo
		if err := rows.Scan(&v.ID, &v.ClassID, &v.VideoID, &v.Name, &v.Description, &v.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (r *PostgresClassRepo) ListFiles(ctx context.Context, tx repository.Tx, classID string) ([]*model.ClassFile, error) {
	const sql = `
SELECT id, class_id, kind, object_id, url, name, description, added_at
  FROM class_files
 WHERE class_id = $1
 ORDER BY added_at;
`
	rows, err := pick(r.pool, tx).Query(ctx, sql, classID)
	if err != nil {
		return nil, fmt.Errorf("ListFiles: %w", err)
	}
	defer rows.Close()
	var out []*model.ClassFile
	for rows.Next() {
		var f model.ClassFile
		var kind string
		if err := rows.Scan(&f.ID, &f.ClassID, &kind, &f.ObjectID, &f.URL, &f.Name, &f.Description, &f.AddedAt); err != nil {
			return nil, err
		}
		f.Kind = model.FileKind(kind)
		out = append(out, &f)
	}
	return out, rows.Err()
}

const submissionColumns = `id, file_id, class_id, student_id, object_id, url, submitted_at`

func collectSubmissions(rows pgx.Rows) ([]*model.Submission, error) {
	var out []*model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.FileID, &s.ClassID, &s.StudentID, &s.ObjectID, &s.URL, &s.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *PostgresClassRepo) ListSubmissionsByClass(ctx context.Context, tx repository.Tx, classID string) ([]*model.Submission, error) {
	rows, err := pick(r.pool, tx).Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE class_id = $1 ORDER BY submitted_at;`, classID)
	if err != nil {
		return nil, fmt.Errorf("ListSubmissionsByClass: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (r *PostgresClassRepo) ListSubmissionsByStudent(ctx context.Context, tx repository.Tx, studentID string) ([]*model.Submission, error) {
	rows, err := pick(r.pool, tx).Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = $1 ORDER BY submitted_at;`, studentID)
	if err != nil {
		return nil, fmt.Errorf("ListSubmissionsByStudent: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (r *PostgresClassRepo) DeleteSubmissionsByStudent(ctx context.Context, tx repository.Tx, studentID string) (int, error) {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM submissions WHERE student_id = $1;`, studentID)
	if err != nil {
		return 0, fmt.Errorf("DeleteSubmissionsByStudent: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
