package uploaderrors

import "time"

// UploadError represents a persisted failed pipeline run
type UploadError struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Filename  string    `json:"filename,omitempty"`
	Stage     string    `json:"stage,omitempty"` // score | persist_image | persist_labels | persist_report
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
