package uploaderrors

import (
	"context"
)

// Repository defines persistence for upload errors
type Repository interface {
	Save(ctx context.Context, e *UploadError) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*UploadError, error)
}
