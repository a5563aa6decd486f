package persistence

import (
	"context"
	"errors"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLocationRepository implements stock.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Location, error) {
	var location stock.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByCode finds a location by its unique code
func (r *GormLocationRepository) FindByCode(ctx context.Context, code string) (*stock.Location, error) {
	var location stock.Location
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByUsage finds all locations with the given usage
func (r *GormLocationRepository) FindByUsage(ctx context.Context, usage stock.LocationUsage) ([]stock.Location, error) {
	var locations []stock.Location
	if err := r.db.WithContext(ctx).
		Where("usage = ?", usage).
		Order("code ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// FindAll finds all locations
func (r *GormLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.Location, error) {
	var locations []stock.Location
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.Location{}),
		filter,
	)

	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, location *stock.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// applyFilter applies filter options to the query
func (r *GormLocationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "usage":
			query = query.Where("usage = ?", value)
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, LocationSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("code ASC")
		}
	} else {
		query = query.Order("code ASC")
	}

	return query
}

// Ensure GormLocationRepository implements stock.LocationRepository
var _ stock.LocationRepository = (*GormLocationRepository)(nil)
