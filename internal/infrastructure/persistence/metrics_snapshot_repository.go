package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
	"github.com/gstboard/backend/internal/infrastructure/persistence/models"
)

// GormMetricsSnapshotRepository implements MetricsSnapshotRepository using GORM
type GormMetricsSnapshotRepository struct {
	db *gorm.DB
}

// NewGormMetricsSnapshotRepository creates a GormMetricsSnapshotRepository
func NewGormMetricsSnapshotRepository(db *gorm.DB) *GormMetricsSnapshotRepository {
	return &GormMetricsSnapshotRepository{db: db}
}

// Save inserts or updates a metrics snapshot
func (r *GormMetricsSnapshotRepository) Save(ctx context.Context, snapshot *analytics.MetricsSnapshot) error {
	model, err := models.MetricsSnapshotModelFromDomain(snapshot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByUploadID finds the snapshot computed for a given upload
func (r *GormMetricsSnapshotRepository) FindByUploadID(ctx context.Context, sellerID, uploadID uuid.UUID) (*analytics.MetricsSnapshot, error) {
	var model models.MetricsSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND upload_id = ?", sellerID, uploadID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindLatestByPlatform finds the most recent snapshot for a platform
func (r *GormMetricsSnapshotRepository) FindLatestByPlatform(ctx context.Context, sellerID uuid.UUID, platform analytics.Platform) (*analytics.MetricsSnapshot, error) {
	var model models.MetricsSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND platform = ?", sellerID, platform).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

var _ analytics.MetricsSnapshotRepository = (*GormMetricsSnapshotRepository)(nil)
