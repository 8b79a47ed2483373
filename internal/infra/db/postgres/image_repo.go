package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/medvisionlab/chestray/internal/domain/images"
)

type ImageRepository struct{ db *sql.DB }

func NewImageRepository(db *sql.DB) *ImageRepository { return &ImageRepository{db: db} }

func (r *ImageRepository) CreateImage(ctx context.Context, rec *domain.ImageRecord) error {
	const q = `
INSERT INTO images (filename, image_data, user_id, patient_name, archive_url, llm_report, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id;`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		rec.Filename, rec.Data, rec.UserID, rec.PatientName, rec.ArchiveURL, rec.LLMReport, created,
	).Scan(&id); err != nil {
		return err
	}
	rec.ID = domain.ID(id)
	return nil
}

func (r *ImageRepository) CreateLabels(ctx context.Context, id domain.ID, labels []domain.DiseaseLabel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO disease_labels (image_id, disease_name, confidence, is_confirmed)
VALUES ($1,$2,$3,$4);`
	for _, l := range labels {
		if _, err := tx.ExecContext(ctx, q, id, l.DiseaseName, l.Confidence, l.Confirmed); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ImageRepository) UpdateReport(ctx context.Context, id domain.ID, report string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE images SET llm_report=$1 WHERE id=$2;`, report, id)
	return err
}

func (r *ImageRepository) UpdateArchiveURL(ctx context.Context, id domain.ID, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE images SET archive_url=$1 WHERE id=$2;`, url, id)
	return err
}

func (r *ImageRepository) Get(ctx context.Context, id domain.ID) (*domain.ImageRecord, error) {
	const q = `
SELECT id, filename, image_data, user_id,
       COALESCE(patient_name,''), COALESCE(archive_url,''), COALESCE(llm_report,''), created_at
FROM images
WHERE id=$1 LIMIT 1;`
	var rec domain.ImageRecord
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Filename, &rec.Data, &rec.UserID,
		&rec.PatientName, &rec.ArchiveURL, &rec.LLMReport, &rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachChildren(ctx, []*domain.ImageRecord{&rec}); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ImageRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.ImageRecord, error) {
	const q = `
SELECT id, filename, image_data, user_id,
       COALESCE(patient_name,''), COALESCE(archive_url,''), COALESCE(llm_report,''), created_at
FROM images
WHERE user_id=$1 ORDER BY created_at DESC, id DESC;`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ImageRecord
	for rows.Next() {
		var rec domain.ImageRecord
		if err := rows.Scan(
			&rec.ID, &rec.Filename, &rec.Data, &rec.UserID,
			&rec.PatientName, &rec.ArchiveURL, &rec.LLMReport, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ImageRepository) ApplyReview(ctx context.Context, id domain.ID, patientName string, comment *domain.Comment, confirmedNames []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if strings.TrimSpace(patientName) != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE images SET patient_name=$1 WHERE id=$2;`, patientName, id); err != nil {
			return err
		}
	}
	if comment != nil {
		const cq = `
INSERT INTO doctor_comments (image_id, user_id, comment, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5);`
		if _, err := tx.ExecContext(ctx, cq, comment.ImageID, comment.UserID, comment.Text, comment.CreatedAt, comment.UpdatedAt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE disease_labels SET is_confirmed=FALSE WHERE image_id=$1;`, id); err != nil {
		return err
	}
	if len(confirmedNames) > 0 {
		ph := make([]string, len(confirmedNames))
		args := make([]any, 0, len(confirmedNames)+1)
		args = append(args, id)
		for i, n := range confirmedNames {
			ph[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, n)
		}
		q := fmt.Sprintf(`UPDATE disease_labels SET is_confirmed=TRUE WHERE image_id=$1 AND disease_name IN (%s);`, strings.Join(ph, ","))
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ImageRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	const q = `
INSERT INTO doctor_comments (image_id, user_id, comment, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id;`
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	return r.db.QueryRowContext(ctx, q, c.ImageID, c.UserID, c.Text, created, updated).Scan(&c.ID)
}

func (r *ImageRepository) attachChildren(ctx context.Context, recs []*domain.ImageRecord) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[domain.ID]*domain.ImageRecord, len(recs))
	ph := make([]string, len(recs))
	args := make([]any, 0, len(recs))
	for i, rec := range recs {
		byID[rec.ID] = rec
		ph[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, rec.ID)
	}
	in := strings.Join(ph, ",")

	lq := fmt.Sprintf(`
SELECT id, image_id, disease_name, confidence, is_confirmed
FROM disease_labels
WHERE image_id IN (%s) ORDER BY id ASC;`, in)
	rows, err := r.db.QueryContext(ctx, lq, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.DiseaseLabel
		if err := rows.Scan(&l.ID, &l.ImageID, &l.DiseaseName, &l.Confidence, &l.Confirmed); err != nil {
			return err
		}
		if rec, ok := byID[l.ImageID]; ok {
			rec.Labels = append(rec.Labels, l)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	cq := fmt.Sprintf(`
SELECT id, image_id, user_id, comment, created_at, updated_at
FROM doctor_comments
WHERE image_id IN (%s) ORDER BY created_at ASC, id ASC;`, in)
	crows, err := r.db.QueryContext(ctx, cq, args...)
	if err != nil {
		return err
	}
	defer crows.Close()
	for crows.Next() {
		var c domain.Comment
		if err := crows.Scan(&c.ID, &c.ImageID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		if rec, ok := byID[c.ImageID]; ok {
			rec.Comments = append(rec.Comments, c)
		}
	}
	return crows.Err()
}
