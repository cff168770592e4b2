package api

import "github.com/nelson-ong-97/trending-repos/internal/models"

// ErrorResponse is the generic error envelope for query endpoints.
// @Description A request or server error
type ErrorResponse struct {
	// Human-readable error message
	// @example Failed to fetch trending repositories
	Error string `json:"error"`
}

// SyncResponse is the envelope returned by the sync trigger.
// @Description The outcome of a sync run
type SyncResponse struct {
	// Whether the run completed
	Success bool `json:"success"`
	// Informational message on success
	Message string `json:"message,omitempty"`
	// The run report with per-period counters
	Result *models.SyncResult `json:"result,omitempty"`
	// Error message on failure
	Error string `json:"error,omitempty"`
}
