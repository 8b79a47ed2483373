package images

import "context"

// Repository port (interface for persistence).
// CreateImage, CreateLabels and UpdateReport are separate commit groups on
// purpose: labels must reference an already-committed record, and a crash
// between groups leaves a valid-but-incomplete record rather than bad data.
type Repository interface {
	// CreateImage commits the record and assigns rec.ID before returning.
	CreateImage(ctx context.Context, rec *ImageRecord) error
	// CreateLabels commits all label rows for one record in a single transaction.
	CreateLabels(ctx context.Context, id ID, labels []DiseaseLabel) error
	UpdateReport(ctx context.Context, id ID, report string) error
	UpdateArchiveURL(ctx context.Context, id ID, url string) error

	// Get returns the record with its labels and comments, or ErrNotFound.
	Get(ctx context.Context, id ID) (*ImageRecord, error)
	// ListByUser returns the user's records newest first, labels and comments included.
	ListByUser(ctx context.Context, userID int64) ([]*ImageRecord, error)

	// ApplyReview atomically overwrites the confirmed state of every label on
	// the record, optionally sets the patient name and appends a comment.
	ApplyReview(ctx context.Context, id ID, patientName string, comment *Comment, confirmedNames []string) error
	AddComment(ctx context.Context, c *Comment) error
}

// ArchiveStore port (interface for object storage of original uploads)
type ArchiveStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
