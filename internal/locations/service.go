package locations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/carhire-backend/pkg/cache"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	cacheName           = "locations"
	defaultCurrencyCode = "EUR"
)

type locationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Location, error)
	TranslatedNames(ctx context.Context, ids []uuid.UUID, language string) (map[uuid.UUID]string, error)
	Create(ctx context.Context, loc *models.Location) error
	Update(ctx context.Context, loc *models.Location) error
	CountChildren(ctx context.Context, tenantID, id uuid.UUID, activeOnly bool) (int64, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Service exposes the location hierarchy. Reads go through the tenant's
// location cache and every mutation drops the tenant's location and pricing
// entries before returning.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]LocationDTO, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID, language string) (*LocationDTO, error)
	Create(ctx context.Context, tenantID uuid.UUID, input CreateLocationInput) (*LocationDTO, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateLocationInput) (*LocationDTO, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type service struct {
	repo  locationRepository
	cache *cache.Cache
}

// NewService builds the location service. A nil cache disables caching.
func NewService(repo locationRepository, c *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	return &service{repo: repo, cache: c}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]LocationDTO, error) {
	key := cache.LocationKey(tenantID, "list", listKey(filter))
	return cache.ReadThrough(ctx, s.cache, cacheName, key, func(ctx context.Context) ([]LocationDTO, error) {
		rows, err := s.repo.List(ctx, tenantID, filter)
		if err != nil {
			return nil, pkgerrors.Dependency(err, "list locations")
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		labels, err := s.repo.TranslatedNames(ctx, ids, filter.Language)
		if err != nil {
			return nil, pkgerrors.Dependency(err, "load location translations")
		}
		out := make([]LocationDTO, 0, len(rows))
		for i := range rows {
			out = append(out, FromModel(&rows[i], labels[rows[i].ID]))
		}
		return out, nil
	})
}

func (s *service) GetByID(ctx context.Context, tenantID, id uuid.UUID, language string) (*LocationDTO, error) {
	key := cache.LocationKey(tenantID, "one", id.String(), language)
	dto, err := cache.ReadThrough(ctx, s.cache, cacheName, key, func(ctx context.Context) (LocationDTO, error) {
		loc, err := s.load(ctx, tenantID, id)
		if err != nil {
			return LocationDTO{}, err
		}
		labels, err := s.repo.TranslatedNames(ctx, []uuid.UUID{id}, language)
		if err != nil {
			return LocationDTO{}, pkgerrors.Dependency(err, "load location translations")
		}
		return FromModel(loc, labels[id]), nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateLocationInput) (*LocationDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required", "name")
	}
	if !input.Type.IsValid() {
		return nil, validationError(fmt.Sprintf("invalid location type %q", input.Type), "type")
	}
	currency, err := normalizeCurrency(input.CurrencyCode)
	if err != nil {
		return nil, err
	}

	loc := &models.Location{
		TenantID:     tenantID,
		ParentID:     input.ParentID,
		Name:         name,
		Type:         input.Type,
		SortOrder:    input.SortOrder,
		DeliveryFee:  input.DeliveryFee,
		DropFee:      input.DropFee,
		MinDays:      input.MinDays,
		CurrencyCode: currency,
		IsActive:     true,
	}
	if input.IsActive != nil {
		loc.IsActive = *input.IsActive
	}
	if err := validateAmounts(loc); err != nil {
		return nil, err
	}
	if loc.ParentID != nil {
		if err := s.checkParent(ctx, tenantID, nil, *loc.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, pkgerrors.Dependency(err, "create location")
	}
	s.invalidate(ctx, tenantID)

	dto := FromModel(loc, "")
	return &dto, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateLocationInput) (*LocationDTO, error) {
	loc, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	switch {
	case input.ClearParent:
		loc.ParentID = nil
	case input.ParentID != nil:
		if err := s.checkParent(ctx, tenantID, &id, *input.ParentID); err != nil {
			return nil, err
		}
		children, err := s.repo.CountChildren(ctx, tenantID, id, false)
		if err != nil {
			return nil, pkgerrors.Dependency(err, "count child locations")
		}
		if children > 0 {
			return nil, validationError("a location with children cannot be nested", "parent_id")
		}
		parentID := *input.ParentID
		loc.ParentID = &parentID
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name cannot be empty", "name")
		}
		loc.Name = name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, validationError(fmt.Sprintf("invalid location type %q", *input.Type), "type")
		}
		loc.Type = *input.Type
	}
	if input.SortOrder != nil {
		loc.SortOrder = *input.SortOrder
	}
	if input.DeliveryFee != nil {
		loc.DeliveryFee = *input.DeliveryFee
	}
	if input.DropFee != nil {
		loc.DropFee = *input.DropFee
	}
	if input.MinDays != nil {
		loc.MinDays = *input.MinDays
	}
	if input.CurrencyCode != nil {
		currency, err := normalizeCurrency(*input.CurrencyCode)
		if err != nil {
			return nil, err
		}
		loc.CurrencyCode = currency
	}
	if input.IsActive != nil {
		loc.IsActive = *input.IsActive
	}
	if err := validateAmounts(loc); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, pkgerrors.Dependency(err, "update location")
	}
	s.invalidate(ctx, tenantID)

	dto := FromModel(loc, "")
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.load(ctx, tenantID, id); err != nil {
		return err
	}

	active, err := s.repo.CountChildren(ctx, tenantID, id, true)
	if err != nil {
		return pkgerrors.Dependency(err, "count child locations")
	}
	if active > 0 {
		return pkgerrors.New(pkgerrors.CodeHasActiveChildren, fmt.Sprintf("location has %d active children", active)).
			WithDetails(map[string]any{"count": active})
	}

	if err := s.repo.SoftDelete(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return pkgerrors.Dependency(err, "delete location")
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *service) load(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	loc, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Dependency(err, "load location")
	}
	return loc, nil
}

// checkParent enforces the two-level hierarchy: the parent belongs to the
// tenant, is top level, and is not the location itself.
func (s *service) checkParent(ctx context.Context, tenantID uuid.UUID, selfID *uuid.UUID, parentID uuid.UUID) error {
	if selfID != nil && *selfID == parentID {
		return validationError("a location cannot be its own parent", "parent_id")
	}
	parent, err := s.repo.FindByID(ctx, tenantID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.MissingReference("parent_id", "parent location")
		}
		return pkgerrors.Dependency(err, "load parent location")
	}
	if !parent.IsTopLevel() {
		return validationError("parent must be a top-level location", "parent_id")
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, tenantID uuid.UUID) {
	s.cache.Invalidate(ctx, cacheName, cache.LocationPrefix(tenantID), cache.PricingPrefix(tenantID))
}

func validateAmounts(loc *models.Location) error {
	if loc.DeliveryFee.IsNegative() {
		return validationError("delivery_fee must not be negative", "delivery_fee")
	}
	if loc.DropFee.IsNegative() {
		return validationError("drop_fee must not be negative", "drop_fee")
	}
	if loc.MinDays < 0 {
		return validationError("min_days must not be negative", "min_days")
	}
	return nil
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return defaultCurrencyCode, nil
	}
	if len(code) != 3 {
		return "", validationError("currency_code must be a 3-letter ISO code", "currency_code")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", validationError("currency_code must be a 3-letter ISO code", "currency_code")
		}
	}
	return code, nil
}

func validationError(msg, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func listKey(filter ListFilter) string {
	parent := "-"
	if filter.ParentID != nil {
		parent = filter.ParentID.String()
	}
	active := "-"
	if filter.Active != nil {
		active = strconv.FormatBool(*filter.Active)
	}
	lang := filter.Language
	if lang == "" {
		lang = "-"
	}
	return strings.Join([]string{parent, strconv.FormatBool(filter.TopLevelOnly), lang, active}, ":")
}
