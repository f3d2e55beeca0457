// Package report serves persisted metric bundles to the presentation layer.
package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
)

// PlatformMetrics pairs a platform with its most recent bundle
type PlatformMetrics struct {
	Platform   analytics.Platform      `json:"platform"`
	UploadID   uuid.UUID               `json:"upload_id"`
	ComputedAt string                  `json:"computed_at"`
	Metrics    analytics.MetricsBundle `json:"metrics"`
}

// ComparisonResult lines the platforms up side by side. Platforms with no
// uploads yet are simply absent.
type ComparisonResult struct {
	Platforms     []PlatformMetrics `json:"platforms"`
	CombinedSales decimal.Decimal   `json:"combined_sales"`
	CombinedTax   decimal.Decimal   `json:"combined_tax"`
}

// MetricsService reads uploads and snapshots for the dashboard
type MetricsService struct {
	historyRepo  analytics.UploadHistoryRepository
	snapshotRepo analytics.MetricsSnapshotRepository
	logger       *zap.Logger
}

// NewMetricsService creates a MetricsService
func NewMetricsService(
	historyRepo analytics.UploadHistoryRepository,
	snapshotRepo analytics.MetricsSnapshotRepository,
	logger *zap.Logger,
) *MetricsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsService{
		historyRepo:  historyRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// LatestByPlatform returns the most recent metrics for one platform
func (s *MetricsService) LatestByPlatform(ctx context.Context, sellerID uuid.UUID, platformTag string) (*PlatformMetrics, error) {
	if !analytics.IsValidPlatform(platformTag) {
		return nil, shared.ErrUnsupportedPlatform
	}
	platform := analytics.Platform(platformTag)

	snapshot, err := s.snapshotRepo.FindLatestByPlatform(ctx, sellerID, platform)
	if err != nil {
		return nil, err
	}

	return &PlatformMetrics{
		Platform:   platform,
		UploadID:   snapshot.UploadID,
		ComputedAt: snapshot.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Metrics:    snapshot.Bundle,
	}, nil
}

// Comparison returns the latest bundle of every platform the seller has
// uploaded, with combined revenue totals across them.
func (s *MetricsService) Comparison(ctx context.Context, sellerID uuid.UUID) (*ComparisonResult, error) {
	result := &ComparisonResult{
		Platforms:     make([]PlatformMetrics, 0, len(analytics.SupportedPlatforms())),
		CombinedSales: decimal.Zero,
		CombinedTax:   decimal.Zero,
	}

	for _, platform := range analytics.SupportedPlatforms() {
		snapshot, err := s.snapshotRepo.FindLatestByPlatform(ctx, sellerID, platform)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}

		result.Platforms = append(result.Platforms, PlatformMetrics{
			Platform:   platform,
			UploadID:   snapshot.UploadID,
			ComputedAt: snapshot.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Metrics:    snapshot.Bundle,
		})
		result.CombinedSales = result.CombinedSales.Add(snapshot.Bundle.TotalSales)
		result.CombinedTax = result.CombinedTax.Add(snapshot.Bundle.TotalTax)
	}

	return result, nil
}

// ListUploads returns a page of the seller's upload history
func (s *MetricsService) ListUploads(ctx context.Context, sellerID uuid.UUID, filter analytics.UploadHistoryFilter, page, pageSize int) (*analytics.UploadHistoryListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.historyRepo.FindAll(ctx, sellerID, filter, page, pageSize)
}

// UploadByID returns one upload record with the metrics computed from it
func (s *MetricsService) UploadByID(ctx context.Context, sellerID, uploadID uuid.UUID) (*analytics.UploadHistory, *analytics.MetricsSnapshot, error) {
	history, err := s.historyRepo.FindByID(ctx, sellerID, uploadID)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := s.snapshotRepo.FindByUploadID(ctx, sellerID, uploadID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// history without a snapshot happens only for failed uploads
			return history, nil, nil
		}
		return nil, nil, err
	}

	return history, snapshot, nil
}
