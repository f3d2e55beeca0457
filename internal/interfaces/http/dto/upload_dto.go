package dto

import (
	"time"

	"github.com/gstboard/backend/internal/domain/analytics"
)

// UploadHistoryResponse is one upload record in a listing
type UploadHistoryResponse struct {
	ID           string               `json:"id"`
	Platform     string               `json:"platform"`
	FileName     string               `json:"file_name"`
	FileSize     int64                `json:"file_size"`
	Status       string               `json:"status"`
	Duplicate    bool                 `json:"duplicate"`
	TotalRows    int                  `json:"total_rows"`
	AcceptedRows int                  `json:"accepted_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	Issues       []analytics.RowIssue `json:"issues,omitempty"`
	ArchiveKey   string               `json:"archive_key,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
}

// FromUploadHistory maps a domain upload record to its wire form
func FromUploadHistory(h *analytics.UploadHistory) UploadHistoryResponse {
	return UploadHistoryResponse{
		ID:           h.ID.String(),
		Platform:     string(h.Platform),
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		Status:       string(h.Status),
		Duplicate:    h.Duplicate,
		TotalRows:    h.TotalRows,
		AcceptedRows: h.AcceptedRows,
		SkippedRows:  h.SkippedRows,
		Issues:       h.Issues,
		ArchiveKey:   h.ArchiveKey,
		CreatedAt:    h.CreatedAt,
		CompletedAt:  h.CompletedAt,
	}
}

// UploadDetailResponse is one upload record with the metrics computed from it
type UploadDetailResponse struct {
	Upload  UploadHistoryResponse    `json:"upload"`
	Metrics *analytics.MetricsBundle `json:"metrics,omitempty"`
}
