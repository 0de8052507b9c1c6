package delivery

import (
	"context"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const deliveryTable = "location_delivery_pricing"

// Repository persists directional delivery fees. Tenant scope comes from the
// origin location.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to delivery pricing operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Resolve returns the active pair origin -> destination.
func (r *Repository) Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (*models.LocationDeliveryPricing, error) {
	var row models.LocationDeliveryPricing
	err := r.db.WithContext(ctx).
		Model(&models.LocationDeliveryPricing{}).
		Select(deliveryTable+".*").
		Joins("JOIN locations ON locations.id = "+deliveryTable+".location_id").
		Where("locations.tenant_id = ? AND locations.deleted_at IS NULL", tenantID).
		Where(deliveryTable+".location_id = ? AND "+deliveryTable+".delivery_location_id = ?", originID, destinationID).
		Where(deliveryTable+".is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByLocation returns every pair leaving originID with destination names.
func (r *Repository) ListByLocation(ctx context.Context, tenantID, originID uuid.UUID) ([]DeliveryRow, error) {
	var rows []DeliveryRow
	err := r.db.WithContext(ctx).
		Table(deliveryTable).
		Select(deliveryTable+".*, dest.name AS delivery_location_name").
		Joins("JOIN locations origin ON origin.id = "+deliveryTable+".location_id").
		Joins("LEFT JOIN locations dest ON dest.id = "+deliveryTable+".delivery_location_id").
		Where("origin.tenant_id = ? AND origin.deleted_at IS NULL", tenantID).
		Where(deliveryTable+".location_id = ?", originID).
		Order("dest.sort_order ASC, dest.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertWithTx inserts row or overwrites the pair with the same origin and destination.
func (r *Repository) UpsertWithTx(tx *gorm.DB, row *models.LocationDeliveryPricing) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}, {Name: "delivery_location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"distance", "fee", "is_active", "updated_at"}),
	}).Create(row).Error
}

// FindPairWithTx loads a pair regardless of its active flag.
func (r *Repository) FindPairWithTx(tx *gorm.DB, originID, destinationID uuid.UUID) (*models.LocationDeliveryPricing, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var row models.LocationDeliveryPricing
	if err := tx.
		Where("location_id = ? AND delivery_location_id = ?", originID, destinationID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
