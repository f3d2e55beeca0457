package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gstboard/backend/internal/application/report"
	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
	"github.com/gstboard/backend/internal/interfaces/http/dto"
)

func newMetricsRouter(historyRepo *MockUploadHistoryRepository, snapshotRepo *MockMetricsSnapshotRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := report.NewMetricsService(historyRepo, snapshotRepo, nil)
	handler := NewMetricsHandler(service)

	engine := gin.New()
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine
}

func performGet(engine *gin.Engine, sellerID, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sellerID != "" {
		req.Header.Set("X-Seller-ID", sellerID)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func testSnapshot(sellerID uuid.UUID, platform analytics.Platform) *analytics.MetricsSnapshot {
	bundle := analytics.EmptyMetricsBundle()
	bundle.TotalShipments = 3
	bundle.TotalSales = decimal.RequireFromString("1500.00")
	bundle.TotalTax = decimal.RequireFromString("270.00")
	return analytics.NewMetricsSnapshot(sellerID, uuid.New(), platform, bundle)
}

func TestMetricsHandler_LatestByPlatform(t *testing.T) {
	sellerID := uuid.New()

	t.Run("returns latest metrics", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		snapshotRepo.On("FindLatestByPlatform", mock.Anything, sellerID, analytics.PlatformAmazon).
			Return(testSnapshot(sellerID, analytics.PlatformAmazon), nil)

		engine := newMetricsRouter(new(MockUploadHistoryRepository), snapshotRepo)
		w := performGet(engine, sellerID.String(), "/api/v1/metrics/amazon/latest")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "amazon", data["platform"])
		metrics := data["metrics"].(map[string]interface{})
		assert.Equal(t, float64(3), metrics["total_shipments"])
	})

	t.Run("unknown platform", func(t *testing.T) {
		engine := newMetricsRouter(new(MockUploadHistoryRepository), new(MockMetricsSnapshotRepository))
		w := performGet(engine, sellerID.String(), "/api/v1/metrics/ebay/latest")

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnsupportedPlatform, resp.Error.Code)
	})

	t.Run("no uploads yet", func(t *testing.T) {
		snapshotRepo := new(MockMetricsSnapshotRepository)
		snapshotRepo.On("FindLatestByPlatform", mock.Anything, sellerID, analytics.PlatformFlipkart).
			Return(nil, shared.ErrNotFound)

		engine := newMetricsRouter(new(MockUploadHistoryRepository), snapshotRepo)
		w := performGet(engine, sellerID.String(), "/api/v1/metrics/flipkart/latest")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing seller header", func(t *testing.T) {
		engine := newMetricsRouter(new(MockUploadHistoryRepository), new(MockMetricsSnapshotRepository))
		w := performGet(engine, "", "/api/v1/metrics/amazon/latest")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsHandler_Comparison(t *testing.T) {
	sellerID := uuid.New()

	snapshotRepo := new(MockMetricsSnapshotRepository)
	snapshotRepo.On("FindLatestByPlatform", mock.Anything, sellerID, analytics.PlatformAmazon).
		Return(testSnapshot(sellerID, analytics.PlatformAmazon), nil)
	snapshotRepo.On("FindLatestByPlatform", mock.Anything, sellerID, analytics.PlatformFlipkart).
		Return(nil, shared.ErrNotFound)
	snapshotRepo.On("FindLatestByPlatform", mock.Anything, sellerID, analytics.PlatformMeesho).
		Return(testSnapshot(sellerID, analytics.PlatformMeesho), nil)

	engine := newMetricsRouter(new(MockUploadHistoryRepository), snapshotRepo)
	w := performGet(engine, sellerID.String(), "/api/v1/metrics/comparison")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	platforms := data["platforms"].([]interface{})
	assert.Len(t, platforms, 2)
	assert.Equal(t, "3000", data["combined_sales"])
	assert.Equal(t, "540", data["combined_tax"])
}

func TestMetricsHandler_ListUploads(t *testing.T) {
	sellerID := uuid.New()

	t.Run("returns a page with meta", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		history := analytics.NewUploadHistory(sellerID, analytics.PlatformMeesho, "sales.csv", 2048, "abc")
		history.Complete(10, 9, 1, nil)

		historyRepo.On("FindAll", mock.Anything, sellerID, analytics.UploadHistoryFilter{}, 1, 20).
			Return(&analytics.UploadHistoryListResult{
				Items:      []*analytics.UploadHistory{history},
				TotalCount: 1,
				Page:       1,
				PageSize:   20,
			}, nil)

		engine := newMetricsRouter(historyRepo, new(MockMetricsSnapshotRepository))
		w := performGet(engine, sellerID.String(), "/api/v1/uploads")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)

		items := resp.Data.([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, "meesho", item["platform"])
		assert.Equal(t, float64(9), item["accepted_rows"])
	})

	t.Run("rejects unknown platform filter", func(t *testing.T) {
		engine := newMetricsRouter(new(MockUploadHistoryRepository), new(MockMetricsSnapshotRepository))
		w := performGet(engine, sellerID.String(), "/api/v1/uploads?platform=ebay")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsHandler_UploadByID(t *testing.T) {
	sellerID := uuid.New()

	t.Run("returns upload with metrics", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		snapshotRepo := new(MockMetricsSnapshotRepository)

		history := analytics.NewUploadHistory(sellerID, analytics.PlatformAmazon, "mtr.csv", 4096, "def")
		history.Complete(5, 5, 0, nil)
		snapshot := testSnapshot(sellerID, analytics.PlatformAmazon)

		historyRepo.On("FindByID", mock.Anything, sellerID, history.ID).Return(history, nil)
		snapshotRepo.On("FindByUploadID", mock.Anything, sellerID, history.ID).Return(snapshot, nil)

		engine := newMetricsRouter(historyRepo, snapshotRepo)
		w := performGet(engine, sellerID.String(), "/api/v1/uploads/"+history.ID.String())

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		upload := data["upload"].(map[string]interface{})
		assert.Equal(t, history.ID.String(), upload["id"])
		assert.NotNil(t, data["metrics"])
	})

	t.Run("invalid id", func(t *testing.T) {
		engine := newMetricsRouter(new(MockUploadHistoryRepository), new(MockMetricsSnapshotRepository))
		w := performGet(engine, sellerID.String(), "/api/v1/uploads/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		historyRepo := new(MockUploadHistoryRepository)
		id := uuid.New()
		historyRepo.On("FindByID", mock.Anything, sellerID, id).Return(nil, shared.ErrNotFound)

		engine := newMetricsRouter(historyRepo, new(MockMetricsSnapshotRepository))
		w := performGet(engine, sellerID.String(), "/api/v1/uploads/"+id.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
