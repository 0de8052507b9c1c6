package locations

import (
	"context"
	"fmt"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles location persistence. Every query is tenant scoped and
// soft-deleted rows are excluded by gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to location operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a tenant location regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindByIDs returns the tenant locations among ids keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Location, error) {
	out := make(map[uuid.UUID]models.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// List returns tenant locations matching filter ordered by sort_order then name.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Location, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	switch {
	case filter.ParentID != nil:
		query = query.Where("parent_id = ?", *filter.ParentID)
	case filter.TopLevelOnly:
		query = query.Where("parent_id IS NULL")
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var rows []models.Location
	if err := query.Order("sort_order ASC, name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TranslatedNames returns the language-specific label per location id.
func (r *Repository) TranslatedNames(ctx context.Context, ids []uuid.UUID, language string) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 || language == "" {
		return out, nil
	}
	var rows []models.LocationTranslation
	if err := r.db.WithContext(ctx).
		Where("location_id IN ? AND language = ?", ids, language).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LocationID] = row.Name
	}
	return out, nil
}

// Create persists a new location.
func (r *Repository) Create(ctx context.Context, loc *models.Location) error {
	if loc == nil {
		return fmt.Errorf("location is required")
	}
	return r.db.WithContext(ctx).Create(loc).Error
}

// Update saves every column of the location.
func (r *Repository) Update(ctx context.Context, loc *models.Location) error {
	if loc == nil {
		return fmt.Errorf("location is required")
	}
	return r.db.WithContext(ctx).Save(loc).Error
}

// CountChildren counts children of id; activeOnly restricts to active rows.
func (r *Repository) CountChildren(ctx context.Context, tenantID, id uuid.UUID, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SoftDelete marks the location deleted.
func (r *Repository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Location{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
