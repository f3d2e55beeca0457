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

// GormUploadHistoryRepository implements UploadHistoryRepository using GORM
type GormUploadHistoryRepository struct {
	db *gorm.DB
}

// NewGormUploadHistoryRepository creates a GormUploadHistoryRepository
func NewGormUploadHistoryRepository(db *gorm.DB) *GormUploadHistoryRepository {
	return &GormUploadHistoryRepository{db: db}
}

// Save inserts or updates an upload record
func (r *GormUploadHistoryRepository) Save(ctx context.Context, history *analytics.UploadHistory) error {
	model := models.UploadHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an upload record by ID within a seller's scope
func (r *GormUploadHistoryRepository) FindByID(ctx context.Context, sellerID, id uuid.UUID) (*analytics.UploadHistory, error) {
	var model models.UploadHistoryModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND id = ?", sellerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns a seller's upload records with pagination and filtering
func (r *GormUploadHistoryRepository) FindAll(
	ctx context.Context,
	sellerID uuid.UUID,
	filter analytics.UploadHistoryFilter,
	page, pageSize int,
) (*analytics.UploadHistoryListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.UploadHistoryModel{}).
		Where("seller_id = ?", sellerID)

	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	query = query.Order("created_at DESC")

	var uploadModels []models.UploadHistoryModel
	if err := query.Find(&uploadModels).Error; err != nil {
		return nil, err
	}

	items := make([]*analytics.UploadHistory, len(uploadModels))
	for i := range uploadModels {
		item, err := uploadModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	return &analytics.UploadHistoryListResult{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// ExistsByChecksum reports whether a seller already uploaded a file with
// this checksum. Duplicate-flagged records count too, so a file stays a
// duplicate no matter how many times it is re-sent.
func (r *GormUploadHistoryRepository) ExistsByChecksum(ctx context.Context, sellerID uuid.UUID, checksum string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UploadHistoryModel{}).
		Where("seller_id = ? AND checksum = ?", sellerID, checksum).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ analytics.UploadHistoryRepository = (*GormUploadHistoryRepository)(nil)
