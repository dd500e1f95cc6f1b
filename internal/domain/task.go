package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a download task.
type TaskStatus string

const (
	StatusDownloading      TaskStatus = "downloading"
	StatusCompleted        TaskStatus = "completed"
	StatusFailedDownload   TaskStatus = "failed_download"
	StatusFailedDecompress TaskStatus = "failed_decompress"
	StatusFailedUnexpected TaskStatus = "failed_unexpected"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s TaskStatus) IsTerminal() bool {
	return s != StatusDownloading
}

// Task is one accepted download-and-extract request, tracked by ID
// through to a terminal status.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	Status      TaskStatus `json:"status"`
	ResultCount int        `json:"result_count"`
	Accessions  []string   `json:"accessions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a task in the downloading state for the given URL.
func NewTask(url string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.New(),
		URL:       url,
		Status:    StatusDownloading,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
