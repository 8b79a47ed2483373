package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/medvisionlab/chestray/internal/domain/uploaderrors"
)

type UploadErrorRepository struct {
	db *sql.DB
}

func NewUploadErrorRepository(db *sql.DB) *UploadErrorRepository {
	return &UploadErrorRepository{db: db}
}

func (r *UploadErrorRepository) Save(ctx context.Context, e *domain.UploadError) error {
	const q = `
INSERT INTO upload_errors (user_id, filename, stage, message, created_at)
VALUES (?,?,?,?,?);
`
	stage := e.Stage
	if strings.TrimSpace(stage) == "" {
		stage = "-"
	}
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, e.UserID, e.Filename, stage, msg, created)
	return err
}

func (r *UploadErrorRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.UploadError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, filename, stage, message, created_at
FROM upload_errors
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.UploadError
	for rows.Next() {
		var e domain.UploadError
		if err := rows.Scan(&e.ID, &e.UserID, &e.Filename, &e.Stage, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
