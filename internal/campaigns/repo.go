package campaigns

import (
	"context"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists tenant campaigns.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to campaign operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *models.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) Update(ctx context.Context, c *models.Campaign) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns tenant campaigns, newest window first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.Campaign, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Campaign
	if err := query.Order("start_date DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCandidates narrows by tenant, active flag and scope in SQL. The date
// window and minimum days are checked by Matches.
func (r *Repository) FindCandidates(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) ([]models.Campaign, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("(location_id IS NULL OR location_id = ?)", cand.LocationID).
		Where("(vehicle_id IS NULL OR vehicle_id = ?)", cand.VehicleID)
	if cand.VehicleCategoryID != nil {
		query = query.Where("(vehicle_category_id IS NULL OR vehicle_category_id = ?)", *cand.VehicleCategoryID)
	} else {
		query = query.Where("vehicle_category_id IS NULL")
	}
	var rows []models.Campaign
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Deactivate clears the active flag; campaigns are never hard deleted.
func (r *Repository) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
