package images

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/medvisionlab/chestray/internal/application"
	"github.com/medvisionlab/chestray/internal/domain/diseases"
	domain "github.com/medvisionlab/chestray/internal/domain/images"
	"github.com/medvisionlab/chestray/internal/domain/scoring"
	"github.com/medvisionlab/chestray/internal/domain/uploaderrors"
)

// ReportService produces best-effort report text; it never fails.
type ReportService interface {
	Generate(ctx context.Context, preds []scoring.Prediction) string
}

// Service implements the upload pipeline and the review workflow.
// Service is designed to be used concurrently and is thread-safe: every field
// is set once at startup and read-only afterwards.
type Service struct {
	Repo    domain.Repository
	Scorer  scoring.Scorer
	Reports ReportService
	Archive domain.ArchiveStore     // optional, best-effort copy of the original upload
	Errors  uploaderrors.Repository // optional, audit rows for failed runs
	Clock   application.Clock
}

//
// ==== USE CASES ====
//

// UploadCommand is one upload request after authentication.
type UploadCommand struct {
	UserID   int64
	Filename string
	Data     []byte
}

type UploadResult struct {
	ImageID     domain.ID            `json:"image_id"`
	Predictions []scoring.Prediction `json:"predictions"`
	Report      string               `json:"llm_report"`
}

// Upload runs the whole pipeline for one image: validate, score, commit the
// record, commit the 14 label rows, generate the report, attach it. The three
// persistence steps are separate commit groups; a crash between them leaves a
// valid-but-incomplete record and nothing is rolled back retroactively.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (UploadResult, error) {
	if strings.TrimSpace(cmd.Filename) == "" || len(cmd.Data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: no file selected", domain.ErrValidation)
	}

	preds, err := s.Scorer.Score(ctx, cmd.Data)
	if err != nil {
		// Nothing persisted yet; surface the scorer failure as-is.
		s.recordFailure(cmd, "score", err)
		return UploadResult{}, err
	}

	rec := &domain.ImageRecord{
		Filename:  cmd.Filename,
		Data:      cmd.Data,
		UserID:    cmd.UserID,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.CreateImage(ctx, rec); err != nil {
		s.recordFailure(cmd, "persist_image", err)
		return UploadResult{}, err
	}

	s.archiveOriginal(ctx, rec)

	labels := make([]domain.DiseaseLabel, len(preds))
	for i, p := range preds {
		labels[i] = domain.DiseaseLabel{
			ImageID:     rec.ID,
			DiseaseName: p.Disease,
			Confidence:  p.Confidence,
		}
	}
	if err := s.Repo.CreateLabels(ctx, rec.ID, labels); err != nil {
		// The committed image row stays; a re-upload creates a fresh record.
		s.recordFailure(cmd, "persist_labels", err)
		return UploadResult{}, err
	}

	// Never fails: quota and provider errors degrade to fallback text.
	reportText := s.Reports.Generate(ctx, preds)

	if err := s.Repo.UpdateReport(ctx, rec.ID, reportText); err != nil {
		s.recordFailure(cmd, "persist_report", err)
		return UploadResult{}, err
	}

	return UploadResult{ImageID: rec.ID, Predictions: preds, Report: reportText}, nil
}

// ReviewCommand carries one save_predictions call.
type ReviewCommand struct {
	ImageID         domain.ID
	ConfirmedLabels []string
	PatientName     string
	DoctorComment   string
}

// ApplyReview overwrites the confirmed flag on every label of the record
// (confirmed = name present in ConfirmedLabels), optionally sets the patient
// name and appends a comment. The whole edit is one transaction.
func (s *Service) ApplyReview(ctx context.Context, userID int64, cmd ReviewCommand) error {
	rec, err := s.Repo.Get(ctx, cmd.ImageID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return domain.ErrNotOwner
	}

	var comment *domain.Comment
	if strings.TrimSpace(cmd.DoctorComment) != "" {
		now := s.Clock.Now()
		comment = &domain.Comment{
			ImageID:   cmd.ImageID,
			UserID:    userID,
			Text:      cmd.DoctorComment,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	confirmed := make([]string, 0, len(cmd.ConfirmedLabels))
	for _, name := range cmd.ConfirmedLabels {
		if diseases.IsCanonical(name) {
			confirmed = append(confirmed, name)
		}
	}

	return s.Repo.ApplyReview(ctx, cmd.ImageID, cmd.PatientName, comment, confirmed)
}

// AddComment appends one comment row after ownership checks.
func (s *Service) AddComment(ctx context.Context, userID int64, imageID domain.ID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: comment is required", domain.ErrValidation)
	}

	rec, err := s.Repo.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return domain.ErrNotOwner
	}

	now := s.Clock.Now()
	return s.Repo.AddComment(ctx, &domain.Comment{
		ImageID:   imageID,
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// History returns the user's records, newest first, labels and comments included.
func (s *Service) History(ctx context.Context, userID int64) ([]*domain.ImageRecord, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// UploadFailures returns the user's most recent failed pipeline runs.
func (s *Service) UploadFailures(ctx context.Context, userID int64, limit int) ([]*uploaderrors.UploadError, error) {
	if s.Errors == nil {
		return nil, nil
	}
	return s.Errors.ListByUser(ctx, userID, limit)
}

// archiveOriginal pushes a copy of the upload to object storage and remembers
// the URL. Failures are logged and ignored; the database row is authoritative.
func (s *Service) archiveOriginal(ctx context.Context, rec *domain.ImageRecord) {
	if s.Archive == nil {
		return
	}
	key := fmt.Sprintf("%d/%s-%s", rec.UserID, uuid.New().String(), rec.Filename)
	url, err := s.Archive.Put(ctx, key, rec.Data, contentTypeFor(rec.Filename))
	if err != nil {
		log.WithError(err).WithField("image_id", rec.ID).Warn("archive upload failed")
		return
	}
	if err := s.Repo.UpdateArchiveURL(ctx, rec.ID, url); err != nil {
		log.WithError(err).WithField("image_id", rec.ID).Warn("archive url update failed")
	}
	rec.ArchiveURL = url
}

func (s *Service) recordFailure(cmd UploadCommand, stage string, cause error) {
	if s.Errors == nil {
		return
	}
	// Audit writes use a fresh context so a cancelled request still leaves a trace.
	e := &uploaderrors.UploadError{
		UserID:    cmd.UserID,
		Filename:  cmd.Filename,
		Stage:     stage,
		Message:   cause.Error(),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Errors.Save(context.Background(), e); err != nil {
		log.WithError(err).Warn("failed to persist upload error audit row")
	}
}

// contentTypeFor picks a content type for the archive copy from the extension.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
