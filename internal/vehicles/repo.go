package vehicles

import (
	"context"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the tenant vehicle catalog. The catalog is owned by
// another service, so there are no write paths here.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to vehicle lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a vehicle owned by the tenant.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindByIDs returns the tenant's vehicles among ids, keyed by id. Unknown or
// foreign ids are simply absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Vehicle, error) {
	out := make(map[uuid.UUID]models.Vehicle, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Vehicle
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

// ListActive returns every active vehicle of the tenant ordered by name.
func (r *Repository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveWithTx is ListActive inside an open transaction.
func (r *Repository) ListActiveWithTx(tx *gorm.DB, tenantID uuid.UUID) ([]models.Vehicle, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var rows []models.Vehicle
	if err := tx.
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
