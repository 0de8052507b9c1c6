package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/carhire-backend/pkg/cache"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const cacheName = "delivery"

type deliveryRepository interface {
	Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (*models.LocationDeliveryPricing, error)
	ListByLocation(ctx context.Context, tenantID, originID uuid.UUID) ([]DeliveryRow, error)
	UpsertWithTx(tx *gorm.DB, row *models.LocationDeliveryPricing) error
	FindPairWithTx(tx *gorm.DB, originID, destinationID uuid.UUID) (*models.LocationDeliveryPricing, error)
}

type locationLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Location, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns directional delivery fees between tenant locations.
type Service interface {
	Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (ResolveResult, error)
	ListByLocation(ctx context.Context, tenantID, originID uuid.UUID) ([]DeliveryPricingDTO, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, input UpsertInput) (*DeliveryPricingDTO, error)
	BulkUpsert(ctx context.Context, tenantID uuid.UUID, input BulkUpsertInput) (*BulkResult, error)
}

type service struct {
	repo      deliveryRepository
	locations locationLookup
	tx        txRunner
	cache     *cache.Cache
}

// NewService wires the delivery service. A nil cache disables caching.
func NewService(repo deliveryRepository, locations locationLookup, tx txRunner, c *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, locations: locations, tx: tx, cache: c}, nil
}

// Resolve looks up the fee for delivering from origin to destination. A miss is
// cached too; every pair mutation drops the tenant's location prefix.
func (s *service) Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (ResolveResult, error) {
	if originID == destinationID {
		return ResolveResult{}, nil
	}
	key := cache.LocationKey(tenantID, "delivery", originID.String(), destinationID.String())
	return cache.ReadThrough(ctx, s.cache, cacheName, key, func(ctx context.Context) (ResolveResult, error) {
		row, err := s.repo.Resolve(ctx, tenantID, originID, destinationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ResolveResult{}, nil
			}
			return ResolveResult{}, pkgerrors.Dependency(err, "resolve delivery fee")
		}
		dto := FromModel(row)
		return ResolveResult{Found: true, Row: &dto}, nil
	})
}

func (s *service) ListByLocation(ctx context.Context, tenantID, originID uuid.UUID) ([]DeliveryPricingDTO, error) {
	if _, err := s.locations.FindByID(ctx, tenantID, originID); err != nil {
		return nil, locationError(err)
	}
	key := cache.LocationKey(tenantID, "delivery-list", originID.String())
	return cache.ReadThrough(ctx, s.cache, cacheName, key, func(ctx context.Context) ([]DeliveryPricingDTO, error) {
		rows, err := s.repo.ListByLocation(ctx, tenantID, originID)
		if err != nil {
			return nil, pkgerrors.Dependency(err, "list delivery pricing")
		}
		out := make([]DeliveryPricingDTO, 0, len(rows))
		for i := range rows {
			dto := FromModel(&rows[i].LocationDeliveryPricing)
			dto.DeliveryLocationName = rows[i].DeliveryLocationName
			out = append(out, dto)
		}
		return out, nil
	})
}

func (s *service) Upsert(ctx context.Context, tenantID uuid.UUID, input UpsertInput) (*DeliveryPricingDTO, error) {
	if input.LocationID == input.DeliveryLocationID {
		return nil, validationError("origin and destination must differ", "delivery_location_id")
	}
	if field := negativeField(input.Distance, input.Fee); field != "" {
		return nil, validationError(field+" must not be negative", field)
	}
	found, err := s.locations.FindByIDs(ctx, tenantID, []uuid.UUID{input.LocationID, input.DeliveryLocationID})
	if err != nil {
		return nil, pkgerrors.Dependency(err, "load locations")
	}
	if _, ok := found[input.LocationID]; !ok {
		return nil, pkgerrors.MissingReference("location_id", "location")
	}
	dest, ok := found[input.DeliveryLocationID]
	if !ok {
		return nil, pkgerrors.MissingReference("delivery_location_id", "delivery location")
	}

	row := &models.LocationDeliveryPricing{
		LocationID:         input.LocationID,
		DeliveryLocationID: input.DeliveryLocationID,
		Distance:           input.Distance,
		Fee:                input.Fee,
		IsActive:           true,
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}

	var stored *models.LocationDeliveryPricing
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpsertWithTx(tx, row); err != nil {
			return err
		}
		pair, err := s.repo.FindPairWithTx(tx, row.LocationID, row.DeliveryLocationID)
		if err != nil {
			return err
		}
		stored = pair
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Dependency(err, "upsert delivery pricing")
	}
	s.invalidate(ctx, tenantID)

	dto := FromModel(stored)
	dto.DeliveryLocationName = dest.Name
	return &dto, nil
}

func (s *service) BulkUpsert(ctx context.Context, tenantID uuid.UUID, input BulkUpsertInput) (*BulkResult, error) {
	if len(input.Rows) == 0 {
		return nil, validationError("rows must not be empty", "rows")
	}
	if _, err := s.locations.FindByID(ctx, tenantID, input.LocationID); err != nil {
		return nil, locationError(err)
	}

	ids := make([]uuid.UUID, 0, len(input.Rows))
	for _, row := range input.Rows {
		ids = append(ids, row.DeliveryLocationID)
	}
	known, err := s.locations.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "load locations")
	}

	result := &BulkResult{Skipped: []SkippedRow{}, DryRun: input.DryRun}
	valid := make([]models.LocationDeliveryPricing, 0, len(input.Rows))
	seen := make(map[uuid.UUID]struct{}, len(input.Rows))
	for i, row := range input.Rows {
		_, exists := known[row.DeliveryLocationID]
		_, dup := seen[row.DeliveryLocationID]
		reason := ""
		switch {
		case row.DeliveryLocationID == input.LocationID:
			reason = SkipSameLocation
		case !exists:
			reason = SkipUnknownLocation
		case negativeField(row.Distance, row.Fee) != "":
			reason = SkipNegativeValue
		case dup:
			reason = SkipDuplicateKey
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, DeliveryLocationID: row.DeliveryLocationID, Reason: reason})
			continue
		}
		seen[row.DeliveryLocationID] = struct{}{}

		active := true
		if row.IsActive != nil {
			active = *row.IsActive
		}
		valid = append(valid, models.LocationDeliveryPricing{
			LocationID:         input.LocationID,
			DeliveryLocationID: row.DeliveryLocationID,
			Distance:           row.Distance,
			Fee:                row.Fee,
			IsActive:           active,
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
		return nil, pkgerrors.Dependency(err, "bulk upsert delivery pricing")
	}
	s.invalidate(ctx, tenantID)
	return result, nil
}

func (s *service) invalidate(ctx context.Context, tenantID uuid.UUID) {
	s.cache.Invalidate(ctx, cacheName, cache.LocationPrefix(tenantID))
}

func negativeField(distance, fee decimal.Decimal) string {
	switch {
	case distance.IsNegative():
		return "distance"
	case fee.IsNegative():
		return "fee"
	}
	return ""
}

func locationError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.MissingReference("location_id", "location")
	}
	return pkgerrors.Dependency(err, "load location")
}

func validationError(msg, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
