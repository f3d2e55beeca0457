package ingest

import (
	"github.com/google/uuid"

	"github.com/gstboard/backend/internal/domain/analytics"
)

// UploadCommand carries one export file into processing. ReturnsData is
// optional and only honored for platforms whose adapter accepts a separate
// returns report.
type UploadCommand struct {
	SellerID    uuid.UUID
	Platform    string
	FileName    string
	Data        []byte
	ReturnsData []byte
}

// UploadResult summarizes a processed upload for the caller
type UploadResult struct {
	UploadID     uuid.UUID               `json:"upload_id"`
	Platform     analytics.Platform      `json:"platform"`
	Status       analytics.UploadStatus  `json:"status"`
	Duplicate    bool                    `json:"duplicate"`
	TotalRows    int                     `json:"total_rows"`
	AcceptedRows int                     `json:"accepted_rows"`
	SkippedRows  int                     `json:"skipped_rows"`
	Issues       []analytics.RowIssue    `json:"issues,omitempty"`
	Metrics      analytics.MetricsBundle `json:"metrics"`
}
