package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gstboard/backend/internal/domain/analytics"
)

// UploadHistoryModel is the persistence model for the UploadHistory domain
// entity.
type UploadHistoryModel struct {
	BaseModel
	SellerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Platform     analytics.Platform     `gorm:"type:varchar(20);not null;index"`
	FileName     string                 `gorm:"type:varchar(255);not null"`
	FileSize     int64                  `gorm:"not null;default:0"`
	Checksum     string                 `gorm:"type:varchar(64);not null;index"`
	TotalRows    int                    `gorm:"not null;default:0"`
	AcceptedRows int                    `gorm:"not null;default:0"`
	SkippedRows  int                    `gorm:"not null;default:0"`
	Duplicate    bool                   `gorm:"not null;default:false"`
	Status       analytics.UploadStatus `gorm:"type:varchar(20);not null;default:'completed'"`
	Issues       string                 `gorm:"type:jsonb;default:'[]'"`
	ArchiveKey   string                 `gorm:"type:varchar(512)"`
	CompletedAt  *time.Time             `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (UploadHistoryModel) TableName() string {
	return "upload_histories"
}

// ToDomain converts the persistence model to a domain UploadHistory entity
func (m *UploadHistoryModel) ToDomain() (*analytics.UploadHistory, error) {
	history := &analytics.UploadHistory{
		BaseEntity:   m.BaseModel.ToDomain(),
		SellerID:     m.SellerID,
		Platform:     m.Platform,
		FileName:     m.FileName,
		FileSize:     m.FileSize,
		Checksum:     m.Checksum,
		TotalRows:    m.TotalRows,
		AcceptedRows: m.AcceptedRows,
		SkippedRows:  m.SkippedRows,
		Duplicate:    m.Duplicate,
		Status:       m.Status,
		ArchiveKey:   m.ArchiveKey,
		CompletedAt:  m.CompletedAt,
	}

	if err := history.SetIssuesFromJSON(m.Issues); err != nil {
		return nil, err
	}

	return history, nil
}

// FromDomain populates the persistence model from a domain UploadHistory
func (m *UploadHistoryModel) FromDomain(h *analytics.UploadHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.SellerID = h.SellerID
	m.Platform = h.Platform
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.Checksum = h.Checksum
	m.TotalRows = h.TotalRows
	m.AcceptedRows = h.AcceptedRows
	m.SkippedRows = h.SkippedRows
	m.Duplicate = h.Duplicate
	m.Status = h.Status
	m.ArchiveKey = h.ArchiveKey
	m.CompletedAt = h.CompletedAt

	if issuesJSON, err := h.IssuesJSON(); err == nil {
		m.Issues = issuesJSON
	} else {
		m.Issues = "[]"
	}
}

// UploadHistoryModelFromDomain creates a persistence model from a domain entity
func UploadHistoryModelFromDomain(h *analytics.UploadHistory) *UploadHistoryModel {
	m := &UploadHistoryModel{}
	m.FromDomain(h)
	return m
}

// MetricsSnapshotModel is the persistence model for MetricsSnapshot. The
// bundle is stored as JSON; headline totals are mirrored into indexed
// columns so listings and comparisons never parse the full bundle.
type MetricsSnapshotModel struct {
	BaseModel
	SellerID       uuid.UUID          `gorm:"type:uuid;not null;index:idx_snapshots_seller_platform"`
	UploadID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	Platform       analytics.Platform `gorm:"type:varchar(20);not null;index:idx_snapshots_seller_platform"`
	TotalShipments int64              `gorm:"not null;default:0"`
	TotalSales     decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0"`
	TotalTax       decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0"`
	ReturnRate     decimal.Decimal    `gorm:"type:numeric(10,6);not null;default:0"`
	Bundle         string             `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (MetricsSnapshotModel) TableName() string {
	return "metrics_snapshots"
}

// ToDomain converts the persistence model to a domain MetricsSnapshot
func (m *MetricsSnapshotModel) ToDomain() (*analytics.MetricsSnapshot, error) {
	bundle := analytics.EmptyMetricsBundle()
	if m.Bundle != "" {
		if err := json.Unmarshal([]byte(m.Bundle), &bundle); err != nil {
			return nil, err
		}
	}

	return &analytics.MetricsSnapshot{
		BaseEntity: m.BaseModel.ToDomain(),
		SellerID:   m.SellerID,
		UploadID:   m.UploadID,
		Platform:   m.Platform,
		Bundle:     bundle,
	}, nil
}

// FromDomain populates the persistence model from a domain MetricsSnapshot
func (m *MetricsSnapshotModel) FromDomain(s *analytics.MetricsSnapshot) error {
	bundleJSON, err := json.Marshal(s.Bundle)
	if err != nil {
		return err
	}

	m.FromDomainBaseEntity(s.BaseEntity)
	m.SellerID = s.SellerID
	m.UploadID = s.UploadID
	m.Platform = s.Platform
	m.TotalShipments = s.Bundle.TotalShipments
	m.TotalSales = s.Bundle.TotalSales
	m.TotalTax = s.Bundle.TotalTax
	m.ReturnRate = s.Bundle.ReturnRate
	m.Bundle = string(bundleJSON)

	return nil
}

// MetricsSnapshotModelFromDomain creates a persistence model from a domain entity
func MetricsSnapshotModelFromDomain(s *analytics.MetricsSnapshot) (*MetricsSnapshotModel, error) {
	m := &MetricsSnapshotModel{}
	if err := m.FromDomain(s); err != nil {
		return nil, err
	}
	return m, nil
}
