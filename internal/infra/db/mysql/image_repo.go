package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/medvisionlab/chestray/internal/domain/images"
)

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// CreateImage commits the record on its own so labels always reference a
// durably assigned id.
func (r *ImageRepository) CreateImage(ctx context.Context, rec *domain.ImageRecord) error {
	const q = `
INSERT INTO images (filename, image_data, user_id, patient_name, archive_url, llm_report, created_at)
VALUES (?,?,?,?,?,?,?);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		rec.Filename, rec.Data, rec.UserID, rec.PatientName, rec.ArchiveURL, rec.LLMReport, created,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = domain.ID(id)
	return nil
}

// CreateLabels writes the whole batch in one transaction; either all label
// rows exist afterwards or none do.
func (r *ImageRepository) CreateLabels(ctx context.Context, id domain.ID, labels []domain.DiseaseLabel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO disease_labels (image_id, disease_name, confidence, is_confirmed)
VALUES (?,?,?,?);
`
	for _, l := range labels {
		if _, err := tx.ExecContext(ctx, q, id, l.DiseaseName, l.Confidence, l.Confirmed); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ImageRepository) UpdateReport(ctx context.Context, id domain.ID, report string) error {
	const q = `UPDATE images SET llm_report=? WHERE id=?;`
	_, err := r.db.ExecContext(ctx, q, report, id)
	return err
}

func (r *ImageRepository) UpdateArchiveURL(ctx context.Context, id domain.ID, url string) error {
	const q = `UPDATE images SET archive_url=? WHERE id=?;`
	_, err := r.db.ExecContext(ctx, q, url, id)
	return err
}

// Get returns the record with labels and comments attached.
func (r *ImageRepository) Get(ctx context.Context, id domain.ID) (*domain.ImageRecord, error) {
	const q = `
SELECT id, filename, image_data, user_id,
       COALESCE(patient_name,''), COALESCE(archive_url,''), COALESCE(llm_report,''), created_at
FROM images
WHERE id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)

	var rec domain.ImageRecord
	if err := row.Scan(
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

// ListByUser returns the user's records newest first.
func (r *ImageRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.ImageRecord, error) {
	const q = `
SELECT id, filename, image_data, user_id,
       COALESCE(patient_name,''), COALESCE(archive_url,''), COALESCE(llm_report,''), created_at
FROM images
WHERE user_id=? ORDER BY created_at DESC, id DESC;
`
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

// ApplyReview performs the whole review edit in one transaction. Confirmation
// state is a full overwrite: every label ends up confirmed exactly when its
// name is in confirmedNames.
func (r *ImageRepository) ApplyReview(ctx context.Context, id domain.ID, patientName string, comment *domain.Comment, confirmedNames []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if strings.TrimSpace(patientName) != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE images SET patient_name=? WHERE id=?;`, patientName, id); err != nil {
			return err
		}
	}

	if comment != nil {
		const cq = `
INSERT INTO doctor_comments (image_id, user_id, comment, created_at, updated_at)
VALUES (?,?,?,?,?);
`
		if _, err := tx.ExecContext(ctx, cq, comment.ImageID, comment.UserID, comment.Text, comment.CreatedAt, comment.UpdatedAt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE disease_labels SET is_confirmed=FALSE WHERE image_id=?;`, id); err != nil {
		return err
	}
	if len(confirmedNames) > 0 {
		placeholders := strings.Repeat("?,", len(confirmedNames))
		placeholders = placeholders[:len(placeholders)-1]
		q := fmt.Sprintf(`UPDATE disease_labels SET is_confirmed=TRUE WHERE image_id=? AND disease_name IN (%s);`, placeholders)
		args := make([]any, 0, len(confirmedNames)+1)
		args = append(args, id)
		for _, n := range confirmedNames {
			args = append(args, n)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ImageRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	const q = `
INSERT INTO doctor_comments (image_id, user_id, comment, created_at, updated_at)
VALUES (?,?,?,?,?);
`
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	res, err := r.db.ExecContext(ctx, q, c.ImageID, c.UserID, c.Text, created, updated)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// attachChildren loads labels and comments for the given records in two
// batched queries instead of one pair per record.
func (r *ImageRepository) attachChildren(ctx context.Context, recs []*domain.ImageRecord) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[domain.ID]*domain.ImageRecord, len(recs))
	args := make([]any, 0, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
		args = append(args, rec.ID)
	}
	placeholders := strings.Repeat("?,", len(recs))
	placeholders = placeholders[:len(placeholders)-1]

	lq := fmt.Sprintf(`
SELECT id, image_id, disease_name, confidence, is_confirmed
FROM disease_labels
WHERE image_id IN (%s) ORDER BY id ASC;`, placeholders)
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
WHERE image_id IN (%s) ORDER BY created_at ASC, id ASC;`, placeholders)
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
