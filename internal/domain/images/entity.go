package images

import (
	"time"
)

// ID type for an image record
type ID int64

// Aggregate Root: ImageRecord
type ImageRecord struct {
	ID          ID             `json:"id"`
	Filename    string         `json:"filename"`
	Data        []byte         `json:"-"`
	UserID      int64          `json:"user_id"`
	PatientName string         `json:"patient_name,omitempty"`
	ArchiveURL  string         `json:"archive_url,omitempty"`
	LLMReport   string         `json:"llm_report,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Labels      []DiseaseLabel `json:"labels,omitempty"`
	Comments    []Comment      `json:"comments,omitempty"`
}

// DiseaseLabel is one scored condition attached to an image record.
// Exactly one row exists per (image, disease) pair.
type DiseaseLabel struct {
	ID          int64   `json:"id"`
	ImageID     ID      `json:"image_id"`
	DiseaseName string  `json:"disease_name"`
	Confidence  float64 `json:"confidence"`
	Confirmed   bool    `json:"is_confirmed"`
}

// Comment is a free-text note a user attached to an image record.
// Comments are append-only; existing rows are never edited.
type Comment struct {
	ID        int64     `json:"id"`
	ImageID   ID        `json:"image_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
