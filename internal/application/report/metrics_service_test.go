package report

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
)

// MockUploadHistoryRepository is a mock implementation of UploadHistoryRepository
type MockUploadHistoryRepository struct {
	mock.Mock
}

func (m *MockUploadHistoryRepository) Save(ctx context.Context, history *analytics.UploadHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockUploadHistoryRepository) FindByID(ctx context.Context, sellerID, id uuid.UUID) (*analytics.UploadHistory, error) {
	args := m.Called(ctx, sellerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.UploadHistory), args.Error(1)
}

func (m *MockUploadHistoryRepository) FindAll(ctx context.Context, sellerID uuid.UUID, filter analytics.UploadHistoryFilter, page, pageSize int) (*analytics.UploadHistoryListResult, error) {
	args := m.Called(ctx, sellerID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.UploadHistoryListResult), args.Error(1)
}

func (m *MockUploadHistoryRepository) ExistsByChecksum(ctx context.Context, sellerID uuid.UUID, checksum string) (bool, error) {
	args := m.Called(ctx, sellerID, checksum)
	return args.Bool(0), args.Error(1)
}

// MockMetricsSnapshotRepository is a mock implementation of MetricsSnapshotRepository
type MockMetricsSnapshotRepository struct {
	mock.Mock
}

func (m *MockMetricsSnapshotRepository) Save(ctx context.Context, snapshot *analytics.MetricsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockMetricsSnapshotRepository) FindByUploadID(ctx context.Context, sellerID, uploadID uuid.UUID) (*analytics.MetricsSnapshot, error) {
	args := m.Called(ctx, sellerID, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.MetricsSnapshot), args.Error(1)
}

func (m *MockMetricsSnapshotRepository) FindLatestByPlatform(ctx context.Context, sellerID uuid.UUID, platform analytics.Platform) (*analytics.MetricsSnapshot, error) {
	args := m.Called(ctx, sellerID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.MetricsSnapshot), args.Error(1)
}

func sampleSnapshot(sellerID uuid.UUID, platform analytics.Platform, sales, tax string) *analytics.MetricsSnapshot {
	bundle := analytics.EmptyMetricsBundle()
	bundle.TotalShipments = 2
	bundle.TotalQuantity = 2
	bundle.TotalSales = decimal.RequireFromString(sales)
	bundle.TotalTax = decimal.RequireFromString(tax)
	return analytics.NewMetricsSnapshot(sellerID, uuid.New(), platform, bundle)
}

// ---------------------------------------------------------------------------
// LatestByPlatform Tests
// ---------------------------------------------------------------------------

func TestMetricsService_LatestByPlatform(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("returns the latest snapshot", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		snapshot := sampleSnapshot(sellerID, analytics.PlatformAmazon, "1180.00", "180.00")
		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformAmazon).Return(snapshot, nil)

		got, err := service.LatestByPlatform(ctx, sellerID, "amazon")
		require.NoError(t, err)

		assert.Equal(t, analytics.PlatformAmazon, got.Platform)
		assert.Equal(t, snapshot.UploadID, got.UploadID)
		assert.NotEmpty(t, got.ComputedAt)
		assert.True(t, got.Metrics.TotalSales.Equal(decimal.RequireFromString("1180.00")))

		snapshotRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown platform before hitting the store", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		_, err := service.LatestByPlatform(ctx, sellerID, "ebay")
		assert.ErrorIs(t, err, shared.ErrUnsupportedPlatform)
		snapshotRepo.AssertNotCalled(t, "FindLatestByPlatform")
	})

	t.Run("propagates not found", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformFlipkart).Return(nil, shared.ErrNotFound)

		_, err := service.LatestByPlatform(ctx, sellerID, "flipkart")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ---------------------------------------------------------------------------
// Comparison Tests
// ---------------------------------------------------------------------------

func TestMetricsService_Comparison(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("sums across platforms and skips absent ones", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		amazon := sampleSnapshot(sellerID, analytics.PlatformAmazon, "1000.00", "180.00")
		meesho := sampleSnapshot(sellerID, analytics.PlatformMeesho, "500.00", "90.00")

		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformAmazon).Return(amazon, nil)
		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformFlipkart).Return(nil, shared.ErrNotFound)
		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformMeesho).Return(meesho, nil)

		result, err := service.Comparison(ctx, sellerID)
		require.NoError(t, err)

		require.Len(t, result.Platforms, 2)
		assert.Equal(t, analytics.PlatformAmazon, result.Platforms[0].Platform)
		assert.Equal(t, analytics.PlatformMeesho, result.Platforms[1].Platform)
		assert.True(t, result.CombinedSales.Equal(decimal.RequireFromString("1500.00")))
		assert.True(t, result.CombinedTax.Equal(decimal.RequireFromString("270.00")))
	})

	t.Run("seller with no uploads gets an empty result", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		for _, platform := range analytics.SupportedPlatforms() {
			snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, platform).Return(nil, shared.ErrNotFound)
		}

		result, err := service.Comparison(ctx, sellerID)
		require.NoError(t, err)
		assert.Empty(t, result.Platforms)
		assert.True(t, result.CombinedSales.IsZero())
	})

	t.Run("storage errors abort the comparison", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(new(MockUploadHistoryRepository), snapshotRepo, nil)

		snapshotRepo.On("FindLatestByPlatform", ctx, sellerID, analytics.PlatformAmazon).Return(nil, assert.AnError)

		_, err := service.Comparison(ctx, sellerID)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

// ---------------------------------------------------------------------------
// ListUploads Tests
// ---------------------------------------------------------------------------

func TestMetricsService_ListUploads(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("passes filter and pagination through", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		service := NewMetricsService(historyRepo, new(MockMetricsSnapshotRepository), nil)

		platform := analytics.PlatformMeesho
		filter := analytics.UploadHistoryFilter{Platform: &platform}
		expected := &analytics.UploadHistoryListResult{Items: []*analytics.UploadHistory{}, Page: 2, PageSize: 10}

		historyRepo.On("FindAll", ctx, sellerID, filter, 2, 10).Return(expected, nil)

		result, err := service.ListUploads(ctx, sellerID, filter, 2, 10)
		require.NoError(t, err)
		assert.Same(t, expected, result)
	})

	t.Run("clamps out-of-range pagination", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		service := NewMetricsService(historyRepo, new(MockMetricsSnapshotRepository), nil)

		expected := &analytics.UploadHistoryListResult{}
		historyRepo.On("FindAll", ctx, sellerID, analytics.UploadHistoryFilter{}, 1, 20).Return(expected, nil)

		_, err := service.ListUploads(ctx, sellerID, analytics.UploadHistoryFilter{}, 0, 500)
		require.NoError(t, err)

		historyRepo.AssertExpectations(t)
	})
}

// ---------------------------------------------------------------------------
// UploadByID Tests
// ---------------------------------------------------------------------------

func TestMetricsService_UploadByID(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("returns history with its snapshot", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(historyRepo, snapshotRepo, nil)

		history := analytics.NewUploadHistory(sellerID, analytics.PlatformAmazon, "mtr.csv", 1024, "abc123")
		snapshot := sampleSnapshot(sellerID, analytics.PlatformAmazon, "1180.00", "180.00")

		historyRepo.On("FindByID", ctx, sellerID, history.ID).Return(history, nil)
		snapshotRepo.On("FindByUploadID", ctx, sellerID, history.ID).Return(snapshot, nil)

		gotHistory, gotSnapshot, err := service.UploadByID(ctx, sellerID, history.ID)
		require.NoError(t, err)
		assert.Same(t, history, gotHistory)
		assert.Same(t, snapshot, gotSnapshot)
	})

	t.Run("history without a snapshot is not an error", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		snapshotRepo := new(MockMetricsSnapshotRepository)
		service := NewMetricsService(historyRepo, snapshotRepo, nil)

		history := analytics.NewUploadHistory(sellerID, analytics.PlatformAmazon, "mtr.csv", 1024, "abc123")

		historyRepo.On("FindByID", ctx, sellerID, history.ID).Return(history, nil)
		snapshotRepo.On("FindByUploadID", ctx, sellerID, history.ID).Return(nil, shared.ErrNotFound)

		gotHistory, gotSnapshot, err := service.UploadByID(ctx, sellerID, history.ID)
		require.NoError(t, err)
		assert.Same(t, history, gotHistory)
		assert.Nil(t, gotSnapshot)
	})

	t.Run("unknown upload id", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		service := NewMetricsService(historyRepo, new(MockMetricsSnapshotRepository), nil)

		id := uuid.New()
		historyRepo.On("FindByID", ctx, sellerID, id).Return(nil, shared.ErrNotFound)

		_, _, err := service.UploadByID(ctx, sellerID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
