// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormClearanceMetricsProvider implements ClearanceMetricsProvider using GORM.
// It queries the clearance_documents and stock_levels tables directly for
// aggregated metrics.
type GormClearanceMetricsProvider struct {
	db *gorm.DB
}

// NewGormClearanceMetricsProvider creates a new GormClearanceMetricsProvider.
func NewGormClearanceMetricsProvider(db *gorm.DB) *GormClearanceMetricsProvider {
	return &GormClearanceMetricsProvider{db: db}
}

// GetDraftDocumentCount returns the number of clearance documents still in draft.
func (p *GormClearanceMetricsProvider) GetDraftDocumentCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("clearance_documents").
		Where("status = ?", "DRAFT").
		Count(&count).Error

	return count, err
}

// GetOnHandQuantityByLocation returns total on-hand quantity per tracked location.
func (p *GormClearanceMetricsProvider) GetOnHandQuantityByLocation(ctx context.Context) (map[string]int64, error) {
	type result struct {
		LocationCode string `gorm:"column:location_code"`
		Quantity     int64  `gorm:"column:quantity"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("stock_levels").
		Select("stock_locations.code as location_code, COALESCE(SUM(stock_levels.on_hand), 0) as quantity").
		Joins("JOIN stock_locations ON stock_locations.id = stock_levels.location_id").
		Where("stock_locations.usage = ?", "INTERNAL").
		Group("stock_locations.code").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.LocationCode] = r.Quantity
	}

	return m, nil
}

// Ensure GormClearanceMetricsProvider implements ClearanceMetricsProvider
var _ ClearanceMetricsProvider = (*GormClearanceMetricsProvider)(nil)
