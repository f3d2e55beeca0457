package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gstboard/backend/internal/domain/shared"
)

// UploadStatus tracks the lifecycle of a processed upload
type UploadStatus string

const (
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusEmpty     UploadStatus = "empty"
	UploadStatusFailed    UploadStatus = "failed"
)

// RowIssue records one dropped input row: the line, the offending column
// and why the row was skipped.
type RowIssue struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UploadHistory is the audit record of one CSV ingestion: what was
// uploaded, how many rows survived normalization and where the raw file
// was archived, if anywhere.
type UploadHistory struct {
	shared.BaseEntity
	SellerID     uuid.UUID
	Platform     Platform
	FileName     string
	FileSize     int64
	Checksum     string
	TotalRows    int
	AcceptedRows int
	SkippedRows  int
	Duplicate    bool
	Status       UploadStatus
	Issues       []RowIssue
	ArchiveKey   string
	CompletedAt  *time.Time
}

// NewUploadHistory creates an upload record for a file about to be processed
func NewUploadHistory(sellerID uuid.UUID, platform Platform, fileName string, fileSize int64, checksum string) *UploadHistory {
	return &UploadHistory{
		BaseEntity: shared.NewBaseEntity(),
		SellerID:   sellerID,
		Platform:   platform,
		FileName:   fileName,
		FileSize:   fileSize,
		Checksum:   checksum,
		Status:     UploadStatusCompleted,
		Issues:     make([]RowIssue, 0),
	}
}

// Complete finalizes the record with row tallies from normalization
func (h *UploadHistory) Complete(totalRows, acceptedRows, skippedRows int, issues []RowIssue) {
	h.TotalRows = totalRows
	h.AcceptedRows = acceptedRows
	h.SkippedRows = skippedRows
	if issues != nil {
		h.Issues = issues
	}
	if acceptedRows == 0 {
		h.Status = UploadStatusEmpty
	} else {
		h.Status = UploadStatusCompleted
	}
	now := time.Now()
	h.CompletedAt = &now
	h.Touch()
}

// MarkDuplicate flags a file whose checksum was already processed
func (h *UploadHistory) MarkDuplicate() {
	h.Duplicate = true
	h.Touch()
}

// SetArchiveKey records the object-storage key of the archived raw export
func (h *UploadHistory) SetArchiveKey(key string) {
	h.ArchiveKey = key
	h.Touch()
}

// IssuesJSON serializes the row issues for persistence
func (h *UploadHistory) IssuesJSON() (string, error) {
	data, err := json.Marshal(h.Issues)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetIssuesFromJSON restores row issues from their persisted form
func (h *UploadHistory) SetIssuesFromJSON(data string) error {
	if data == "" {
		h.Issues = make([]RowIssue, 0)
		return nil
	}
	return json.Unmarshal([]byte(data), &h.Issues)
}

// MetricsSnapshot is the persisted result of aggregating one upload. The
// bundle is stored whole; headline totals are mirrored into their own
// fields so listings never deserialize the full bundle.
type MetricsSnapshot struct {
	shared.BaseEntity
	SellerID uuid.UUID
	UploadID uuid.UUID
	Platform Platform
	Bundle   MetricsBundle
}

// NewMetricsSnapshot creates a snapshot for a completed upload
func NewMetricsSnapshot(sellerID, uploadID uuid.UUID, platform Platform, bundle MetricsBundle) *MetricsSnapshot {
	return &MetricsSnapshot{
		BaseEntity: shared.NewBaseEntity(),
		SellerID:   sellerID,
		UploadID:   uploadID,
		Platform:   platform,
		Bundle:     bundle,
	}
}

// UploadHistoryFilter narrows upload listings
type UploadHistoryFilter struct {
	Platform *Platform
	Status   *UploadStatus
}

// UploadHistoryListResult is a paginated page of upload records
type UploadHistoryListResult struct {
	Items      []*UploadHistory
	TotalCount int64
	Page       int
	PageSize   int
}

// UploadHistoryRepository persists upload audit records
type UploadHistoryRepository interface {
	Save(ctx context.Context, history *UploadHistory) error
	FindByID(ctx context.Context, sellerID, id uuid.UUID) (*UploadHistory, error)
	FindAll(ctx context.Context, sellerID uuid.UUID, filter UploadHistoryFilter, page, pageSize int) (*UploadHistoryListResult, error)
	ExistsByChecksum(ctx context.Context, sellerID uuid.UUID, checksum string) (bool, error)
}

// MetricsSnapshotRepository persists aggregated metric bundles
type MetricsSnapshotRepository interface {
	Save(ctx context.Context, snapshot *MetricsSnapshot) error
	FindByUploadID(ctx context.Context, sellerID, uploadID uuid.UUID) (*MetricsSnapshot, error)
	FindLatestByPlatform(ctx context.Context, sellerID uuid.UUID, platform Platform) (*MetricsSnapshot, error)
}
