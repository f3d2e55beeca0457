// Package ingest implements the upload processing pipeline: parse the
// export, adapt it to the normalized schema, aggregate metrics and persist
// the audit trail plus snapshot.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
	"github.com/gstboard/backend/internal/infrastructure/marketplace"
)

// Processing limit errors
var (
	ErrFileTooLarge = shared.NewDomainError("FILE_TOO_LARGE", "uploaded file exceeds the size limit")
	ErrTooManyRows  = shared.NewDomainError("TOO_MANY_ROWS", "uploaded file exceeds the row limit")
)

// RawFileArchiver stores the raw uploaded bytes for audit purposes
type RawFileArchiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) error
}

// returnsMerger is implemented by adapters that accept a separate returns
// report alongside the sales export.
type returnsMerger interface {
	ReturnsColumns() []string
	MergeReturns(records []analytics.ShipmentRecord, returnRows []*csvtable.Row) int
}

// UploadService processes marketplace export uploads end to end
type UploadService struct {
	registry     *marketplace.Registry
	historyRepo  analytics.UploadHistoryRepository
	snapshotRepo analytics.MetricsSnapshotRepository
	dedup        shared.DedupStore
	archiver     RawFileArchiver
	logger       *zap.Logger
	maxFileSize  int64
	maxRows      int
	dedupTTL     time.Duration
}

// UploadServiceOption configures an UploadService
type UploadServiceOption func(*UploadService)

// WithDedupStore enables fast duplicate detection through a fingerprint store
func WithDedupStore(store shared.DedupStore, ttl time.Duration) UploadServiceOption {
	return func(s *UploadService) {
		s.dedup = store
		if ttl > 0 {
			s.dedupTTL = ttl
		}
	}
}

// WithArchiver enables raw file archival to object storage
func WithArchiver(archiver RawFileArchiver) UploadServiceOption {
	return func(s *UploadService) {
		s.archiver = archiver
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) UploadServiceOption {
	return func(s *UploadService) {
		s.logger = logger
	}
}

// WithLimits bounds accepted uploads
func WithLimits(maxFileSize int64, maxRows int) UploadServiceOption {
	return func(s *UploadService) {
		if maxFileSize > 0 {
			s.maxFileSize = maxFileSize
		}
		if maxRows > 0 {
			s.maxRows = maxRows
		}
	}
}

// NewUploadService creates an UploadService
func NewUploadService(
	registry *marketplace.Registry,
	historyRepo analytics.UploadHistoryRepository,
	snapshotRepo analytics.MetricsSnapshotRepository,
	opts ...UploadServiceOption,
) *UploadService {
	s := &UploadService{
		registry:     registry,
		historyRepo:  historyRepo,
		snapshotRepo: snapshotRepo,
		logger:       zap.NewNop(),
		maxFileSize:  25 << 20,
		maxRows:      500000,
		dedupTTL:     24 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Process runs one upload through the full pipeline. Schema-level problems
// (unknown platform, missing columns, unreadable file) fail the upload;
// row-level problems only land in the skipped tally.
func (s *UploadService) Process(ctx context.Context, cmd UploadCommand) (*UploadResult, error) {
	if int64(len(cmd.Data)) > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	adapter, err := s.registry.Resolve(cmd.Platform)
	if err != nil {
		return nil, err
	}
	platform := adapter.Platform()

	checksum := fingerprint(cmd.Data)

	parser, err := csvtable.ParseBytes(cmd.Data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if err := marketplace.CheckSchema(adapter, parser); err != nil {
		return nil, err
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, shared.NewDomainError("MALFORMED_CSV", err.Error())
	}
	if len(rows) > s.maxRows {
		return nil, ErrTooManyRows
	}

	normalized := adapter.Normalize(rows)

	if len(cmd.ReturnsData) > 0 {
		if err := s.mergeReturns(adapter, normalized, cmd.ReturnsData); err != nil {
			return nil, err
		}
	}

	bundle := analytics.Aggregate(normalized.Records)

	history := analytics.NewUploadHistory(cmd.SellerID, platform, cmd.FileName, int64(len(cmd.Data)), checksum)
	history.Complete(normalized.TotalRows, len(normalized.Records), normalized.SkippedRows(), rowIssues(normalized.Skipped))

	duplicate, err := s.isDuplicate(ctx, cmd.SellerID, platform, checksum)
	if err != nil {
		// duplicate detection is advisory, never fail the upload over it
		s.logger.Warn("duplicate check failed", zap.Error(err))
	}
	if duplicate {
		history.MarkDuplicate()
	}

	if s.archiver != nil {
		key := archiveKey(cmd.SellerID.String(), string(platform), history.ID.String())
		if err := s.archiver.Archive(ctx, key, cmd.Data, "text/csv"); err != nil {
			s.logger.Warn("raw file archival failed", zap.String("key", key), zap.Error(err))
		} else {
			history.SetArchiveKey(key)
		}
	}

	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}

	snapshot := analytics.NewMetricsSnapshot(cmd.SellerID, history.ID, platform, bundle)
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("upload processed",
		zap.String("upload_id", history.ID.String()),
		zap.String("platform", string(platform)),
		zap.Int("total_rows", history.TotalRows),
		zap.Int("accepted_rows", history.AcceptedRows),
		zap.Int("skipped_rows", history.SkippedRows),
		zap.Bool("duplicate", history.Duplicate),
	)

	return &UploadResult{
		UploadID:     history.ID,
		Platform:     platform,
		Status:       history.Status,
		Duplicate:    history.Duplicate,
		TotalRows:    history.TotalRows,
		AcceptedRows: history.AcceptedRows,
		SkippedRows:  history.SkippedRows,
		Issues:       history.Issues,
		Metrics:      bundle,
	}, nil
}

// mergeReturns applies an optional returns report to the normalized records
func (s *UploadService) mergeReturns(adapter marketplace.PlatformAdapter, normalized *marketplace.NormalizeResult, returnsData []byte) error {
	merger, ok := adapter.(returnsMerger)
	if !ok {
		return shared.NewDomainError("RETURNS_NOT_SUPPORTED",
			fmt.Sprintf("platform %s does not accept a separate returns file", adapter.Platform()))
	}

	parser, err := csvtable.ParseBytes(returnsData)
	if err != nil {
		return err
	}
	if err := parser.ParseHeader(); err != nil {
		return err
	}
	if missing := parser.MissingHeaders(merger.ReturnsColumns()); len(missing) > 0 {
		return marketplace.NewSchemaMismatchError(adapter.Platform(), missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return shared.NewDomainError("MALFORMED_CSV", err.Error())
	}

	flipped := merger.MergeReturns(normalized.Records, rows)
	s.logger.Debug("returns report merged", zap.Int("flipped", flipped))
	return nil
}

// isDuplicate consults the fingerprint store first, then the persisted
// history. The store forgets after its TTL; the database does not.
func (s *UploadService) isDuplicate(ctx context.Context, sellerID uuid.UUID, platform analytics.Platform, checksum string) (bool, error) {
	if s.dedup != nil {
		key := fmt.Sprintf("%s:%s:%s", sellerID, platform, checksum)
		isNew, err := s.dedup.MarkSeen(ctx, key, s.dedupTTL)
		if err != nil {
			s.logger.Warn("dedup store unavailable", zap.Error(err))
		} else if !isNew {
			return true, nil
		}
	}

	exists, err := s.historyRepo.ExistsByChecksum(ctx, sellerID, checksum)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// fingerprint returns the hex SHA-256 of the raw upload
func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// archiveKey builds the object storage key for a raw upload
func archiveKey(sellerID, platform, uploadID string) string {
	return fmt.Sprintf("uploads/%s/%s/%s.csv", sellerID, platform, uploadID)
}

// rowIssues converts the parser's capped error collection to domain issues
func rowIssues(collection *csvtable.ErrorCollection) []analytics.RowIssue {
	errs := collection.Errors()
	issues := make([]analytics.RowIssue, len(errs))
	for i, e := range errs {
		issues[i] = analytics.RowIssue{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
		}
	}
	return issues
}
