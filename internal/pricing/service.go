package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/angelmondragon/carhire-backend/pkg/cache"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const cacheName = "pricing"

type pricingRepository interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key PricingLookupKey) (*models.LocationVehiclePricing, error)
	ResolveWithTx(tx *gorm.DB, tenantID uuid.UUID, key PricingLookupKey) (*models.LocationVehiclePricing, error)
	FindByKeyWithTx(tx *gorm.DB, key PricingLookupKey) (*models.LocationVehiclePricing, error)
	List(ctx context.Context, tenantID, locationID uuid.UUID, month int) ([]PricingRow, error)
	UpsertWithTx(tx *gorm.DB, row *models.LocationVehiclePricing) error
	UpsertPriceOnlyWithTx(tx *gorm.DB, rows []models.LocationVehiclePricing) error
	DeleteByLocationMonth(ctx context.Context, locationID uuid.UUID, month int) (int64, error)
}

type locationLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
}

type vehicleLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Vehicle, error)
	ListActiveWithTx(tx *gorm.DB, tenantID uuid.UUID) ([]models.Vehicle, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the pricing matrix of a tenant.
type Service interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key PricingLookupKey) (*PricingDTO, error)
	List(ctx context.Context, tenantID, locationID uuid.UUID, month int) ([]PricingDTO, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, input UpsertInput) (*PricingDTO, error)
	BulkUpsert(ctx context.Context, tenantID uuid.UUID, input BulkUpsertInput) (*BulkResult, error)
	BulkCopy(ctx context.Context, tenantID uuid.UUID, input BulkCopyInput) (*BulkCopyResult, error)
	RemoveByLocationAndMonth(ctx context.Context, tenantID, locationID uuid.UUID, month int) (int64, error)
}

type service struct {
	repo      pricingRepository
	locations locationLookup
	vehicles  vehicleLookup
	tx        txRunner
	cache     *cache.Cache
}

// NewService wires the pricing service. A nil cache disables caching.
func NewService(repo pricingRepository, locations locationLookup, vehicles vehicleLookup, tx txRunner, c *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location lookup required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, locations: locations, vehicles: vehicles, tx: tx, cache: c}, nil
}

func (s *service) Resolve(ctx context.Context, tenantID uuid.UUID, key PricingLookupKey) (*PricingDTO, error) {
	if err := ValidateMonth(key.Month); err != nil {
		return nil, err
	}
	if !key.DayRange.IsValid() {
		return nil, validationError(fmt.Sprintf("invalid day range %q", key.DayRange), "day_range")
	}

	cacheKey := cache.PricingKey(tenantID, "resolve",
		key.LocationID.String(), key.VehicleID.String(), strconv.Itoa(key.Month), key.DayRange.String())
	dto, err := cache.ReadThrough(ctx, s.cache, cacheName, cacheKey, func(ctx context.Context) (PricingDTO, error) {
		row, err := s.repo.Resolve(ctx, tenantID, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PricingDTO{}, unavailable(key)
			}
			return PricingDTO{}, pkgerrors.Dependency(err, "resolve pricing")
		}
		return FromModel(row), nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) List(ctx context.Context, tenantID, locationID uuid.UUID, month int) ([]PricingDTO, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	if err := s.requireLocation(ctx, tenantID, locationID); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, tenantID, locationID, month)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "list pricing")
	}
	out := make([]PricingDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i].LocationVehiclePricing)
		dto.VehicleName = rows[i].VehicleName
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) Upsert(ctx context.Context, tenantID uuid.UUID, input UpsertInput) (*PricingDTO, error) {
	if err := ValidateMonth(input.Month); err != nil {
		return nil, err
	}
	if !input.DayRange.IsValid() {
		return nil, validationError(fmt.Sprintf("invalid day range %q", input.DayRange), "day_range")
	}
	if field := negativeField(input.Price, input.Discount, input.MinDays); field != "" {
		return nil, validationError(field+" must not be negative", field)
	}
	if err := s.requireLocation(ctx, tenantID, input.LocationID); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.FindByID(ctx, tenantID, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.MissingReference("vehicle_id", "vehicle")
		}
		return nil, pkgerrors.Dependency(err, "load vehicle")
	}

	row := &models.LocationVehiclePricing{
		LocationID: input.LocationID,
		VehicleID:  input.VehicleID,
		Month:      input.Month,
		DayRange:   input.DayRange,
		Price:      input.Price,
		Discount:   input.Discount,
		MinDays:    input.MinDays,
		IsActive:   true,
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}

	var stored *models.LocationVehiclePricing
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpsertWithTx(tx, row); err != nil {
			return err
		}
		// the insert may have resolved to an existing row with a different id
		found, err := s.repo.FindByKeyWithTx(tx, keyOf(row))
		if err != nil {
			return err
		}
		stored = found
		return nil
	})
	if err != nil {
		return nil, txError(err, "upsert pricing")
	}
	s.invalidate(ctx, tenantID)

	dto := FromModel(stored)
	dto.VehicleName = vehicle.Name
	return &dto, nil
}

func (s *service) BulkUpsert(ctx context.Context, tenantID uuid.UUID, input BulkUpsertInput) (*BulkResult, error) {
	if err := ValidateMonth(input.Month); err != nil {
		return nil, err
	}
	if len(input.Rows) == 0 {
		return nil, validationError("rows must not be empty", "rows")
	}
	if err := s.requireLocation(ctx, tenantID, input.LocationID); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(input.Rows))
	for _, row := range input.Rows {
		ids = append(ids, row.VehicleID)
	}
	known, err := s.vehicles.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "load vehicles")
	}

	result := &BulkResult{Skipped: []SkippedRow{}, DryRun: input.DryRun}
	valid := make([]models.LocationVehiclePricing, 0, len(input.Rows))
	seen := make(map[PricingLookupKey]struct{}, len(input.Rows))
	for i, row := range input.Rows {
		reason := ""
		key := PricingLookupKey{LocationID: input.LocationID, VehicleID: row.VehicleID, Month: input.Month, DayRange: row.DayRange}
		_, dup := seen[key]
		switch {
		case !hasVehicle(known, row.VehicleID):
			reason = SkipUnknownVehicle
		case !row.DayRange.IsValid():
			reason = SkipInvalidDayRange
		case negativeField(row.Price, row.Discount, row.MinDays) != "":
			reason = SkipNegativeValue
		case dup:
			reason = SkipDuplicateKey
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, VehicleID: row.VehicleID, DayRange: row.DayRange, Reason: reason})
			continue
		}
		seen[key] = struct{}{}

		active := true
		if row.IsActive != nil {
			active = *row.IsActive
		}
		valid = append(valid, models.LocationVehiclePricing{
			LocationID: input.LocationID,
			VehicleID:  row.VehicleID,
			Month:      input.Month,
			DayRange:   row.DayRange,
			Price:      row.Price,
			Discount:   row.Discount,
			MinDays:    row.MinDays,
			IsActive:   active,
		})
	}

	if input.Strict && len(result.Skipped) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d rows rejected", len(result.Skipped))).
			WithDetails(map[string]any{"skipped": result.Skipped})
	}
	result.Upserted = len(valid)
	if input.DryRun || len(valid) == 0 {
		return result, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range valid {
			if err := s.repo.UpsertWithTx(tx, &valid[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "bulk upsert pricing")
	}
	s.invalidate(ctx, tenantID)
	return result, nil
}

func (s *service) BulkCopy(ctx context.Context, tenantID uuid.UUID, input BulkCopyInput) (*BulkCopyResult, error) {
	if !input.DayRange.IsValid() {
		return nil, validationError(fmt.Sprintf("invalid day range %q", input.DayRange), "day_range")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, validationError("price must not be negative", "price")
	}
	if input.Price == nil {
		if err := ValidateMonth(input.SourceMonth); err != nil {
			return nil, err
		}
	}
	if err := s.requireLocation(ctx, tenantID, input.LocationID); err != nil {
		return nil, err
	}

	result := &BulkCopyResult{Months: 12}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		price, err := s.copyPrice(tx, tenantID, input)
		if err != nil {
			return err
		}
		vehicles, err := s.vehicles.ListActiveWithTx(tx, tenantID)
		if err != nil {
			return err
		}

		rows := make([]models.LocationVehiclePricing, 0, len(vehicles)*12)
		for _, v := range vehicles {
			for month := 1; month <= 12; month++ {
				rows = append(rows, models.LocationVehiclePricing{
					LocationID: input.LocationID,
					VehicleID:  v.ID,
					Month:      month,
					DayRange:   input.DayRange,
					Price:      price,
					Discount:   decimal.Zero,
					IsActive:   true,
				})
			}
		}
		if err := s.repo.UpsertPriceOnlyWithTx(tx, rows); err != nil {
			return err
		}
		result.Upserted = len(rows)
		result.Vehicles = len(vehicles)
		result.Price = price
		return nil
	})
	if err != nil {
		return nil, txError(err, "bulk copy pricing")
	}
	s.invalidate(ctx, tenantID)
	return result, nil
}

func (s *service) copyPrice(tx *gorm.DB, tenantID uuid.UUID, input BulkCopyInput) (decimal.Decimal, error) {
	if input.Price != nil {
		return *input.Price, nil
	}
	key := PricingLookupKey{
		LocationID: input.LocationID,
		VehicleID:  input.SourceVehicleID,
		Month:      input.SourceMonth,
		DayRange:   input.DayRange,
	}
	source, err := s.repo.ResolveWithTx(tx, tenantID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, unavailable(key)
		}
		return decimal.Zero, err
	}
	return source.Price, nil
}

func (s *service) RemoveByLocationAndMonth(ctx context.Context, tenantID, locationID uuid.UUID, month int) (int64, error) {
	if err := ValidateMonth(month); err != nil {
		return 0, err
	}
	if err := s.requireLocation(ctx, tenantID, locationID); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByLocationMonth(ctx, locationID, month)
	if err != nil {
		return 0, pkgerrors.Dependency(err, "delete pricing")
	}
	s.invalidate(ctx, tenantID)
	return deleted, nil
}

func (s *service) requireLocation(ctx context.Context, tenantID, locationID uuid.UUID) error {
	if _, err := s.locations.FindByID(ctx, tenantID, locationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.MissingReference("location_id", "location")
		}
		return pkgerrors.Dependency(err, "load location")
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, tenantID uuid.UUID) {
	s.cache.Invalidate(ctx, cacheName, cache.PricingPrefix(tenantID))
}

func keyOf(row *models.LocationVehiclePricing) PricingLookupKey {
	return PricingLookupKey{LocationID: row.LocationID, VehicleID: row.VehicleID, Month: row.Month, DayRange: row.DayRange}
}

func hasVehicle(known map[uuid.UUID]models.Vehicle, id uuid.UUID) bool {
	_, ok := known[id]
	return ok
}

func negativeField(price, discount decimal.Decimal, minDays int) string {
	switch {
	case price.IsNegative():
		return "price"
	case discount.IsNegative():
		return "discount"
	case minDays < 0:
		return "min_days"
	}
	return ""
}

func unavailable(key PricingLookupKey) error {
	return pkgerrors.New(pkgerrors.CodePricingUnavailable, "no active price for this location, vehicle, month and day range").
		WithDetails(map[string]any{
			"location_id": key.LocationID,
			"vehicle_id":  key.VehicleID,
			"month":       key.Month,
			"day_range":   key.DayRange,
		})
}

// txError keeps typed errors raised inside a transaction and classifies the rest.
func txError(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Dependency(err, msg)
}

func validationError(msg, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
