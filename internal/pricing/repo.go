package pricing

import (
	"context"
	"sort"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pricingTable = "location_vehicle_pricing"

var matrixKeyColumns = []clause.Column{
	{Name: "location_id"},
	{Name: "vehicle_id"},
	{Name: "month"},
	{Name: "day_range"},
}

// Repository persists the pricing matrix. Rows carry no tenant column; tenant
// scope comes from the owning location.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to pricing operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Resolve returns the active row for key when its location belongs to the tenant.
func (r *Repository) Resolve(ctx context.Context, tenantID uuid.UUID, key PricingLookupKey) (*models.LocationVehiclePricing, error) {
	return findActive(r.db.WithContext(ctx), tenantID, key)
}

// ResolveWithTx is Resolve inside an open transaction.
func (r *Repository) ResolveWithTx(tx *gorm.DB, tenantID uuid.UUID, key PricingLookupKey) (*models.LocationVehiclePricing, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	return findActive(tx, tenantID, key)
}

func findActive(conn *gorm.DB, tenantID uuid.UUID, key PricingLookupKey) (*models.LocationVehiclePricing, error) {
	var row models.LocationVehiclePricing
	err := conn.
		Model(&models.LocationVehiclePricing{}).
		Select(pricingTable+".*").
		Joins("JOIN locations ON locations.id = "+pricingTable+".location_id").
		Where("locations.tenant_id = ? AND locations.deleted_at IS NULL", tenantID).
		Where(pricingTable+".location_id = ? AND "+pricingTable+".vehicle_id = ?", key.LocationID, key.VehicleID).
		Where(pricingTable+".month = ? AND "+pricingTable+".day_range = ?", key.Month, key.DayRange).
		Where(pricingTable+".is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByKeyWithTx loads a row by its unique key regardless of the active flag.
func (r *Repository) FindByKeyWithTx(tx *gorm.DB, key PricingLookupKey) (*models.LocationVehiclePricing, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var row models.LocationVehiclePricing
	if err := tx.
		Where("location_id = ? AND vehicle_id = ? AND month = ? AND day_range = ?",
			key.LocationID, key.VehicleID, key.Month, key.DayRange).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns every row of a location and month with vehicle names, ordered
// by vehicle name then tier.
func (r *Repository) List(ctx context.Context, tenantID, locationID uuid.UUID, month int) ([]PricingRow, error) {
	var rows []PricingRow
	err := r.db.WithContext(ctx).
		Table(pricingTable).
		Select(pricingTable+".*, vehicles.name AS vehicle_name").
		Joins("JOIN locations ON locations.id = "+pricingTable+".location_id").
		Joins("LEFT JOIN vehicles ON vehicles.id = "+pricingTable+".vehicle_id").
		Where("locations.tenant_id = ? AND locations.deleted_at IS NULL", tenantID).
		Where(pricingTable+".location_id = ? AND "+pricingTable+".month = ?", locationID, month).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].VehicleName != rows[j].VehicleName {
			return rows[i].VehicleName < rows[j].VehicleName
		}
		return tierIndex(rows[i].DayRange) < tierIndex(rows[j].DayRange)
	})
	return rows, nil
}

// UpsertWithTx inserts row or overwrites every mutable column of the existing
// row with the same key.
func (r *Repository) UpsertWithTx(tx *gorm.DB, row *models.LocationVehiclePricing) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   matrixKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"price", "discount", "min_days", "is_active", "updated_at"}),
	}).Create(row).Error
}

// UpsertPriceOnlyWithTx inserts rows or overwrites only the price of existing
// ones, leaving discount, min_days and is_active as they were.
func (r *Repository) UpsertPriceOnlyWithTx(tx *gorm.DB, rows []models.LocationVehiclePricing) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   matrixKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).CreateInBatches(rows, 100).Error
}

// DeleteByLocationMonth hard-deletes every row of a location and month.
func (r *Repository) DeleteByLocationMonth(ctx context.Context, locationID uuid.UUID, month int) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("location_id = ? AND month = ?", locationID, month).
		Delete(&models.LocationVehiclePricing{})
	return res.RowsAffected, res.Error
}

func tierIndex(tier enums.DayRange) int {
	for i, candidate := range enums.DayRanges() {
		if candidate == tier {
			return i
		}
	}
	return len(enums.DayRanges())
}
