package domain

import "github.com/google/uuid"

// StartDownloadRequest represents the request body for starting a file download.
type StartDownloadRequest struct {
	URL string `json:"url" validate:"required,safe_url"`
}

// StartDownloadResponse represents the response for an accepted download task.
type StartDownloadResponse struct {
	ID     uuid.UUID  `json:"id"`
	Status TaskStatus `json:"status"`
}

// StatusResponse represents the response for a task status query. The
// accession list is truncated to the first 20 entries followed by a "..."
// marker when longer.
type StatusResponse struct {
	Status        TaskStatus `json:"status"`
	ResultCount   int        `json:"result_count"`
	AccessionList []string   `json:"accession_list,omitempty"`
}
