package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
)

func TestPricingResolveDerivesTierFromRentalDays(t *testing.T) {
	svc := &stubPricingService{row: &pricing.PricingDTO{Price: decimal.NewFromInt(500)}}
	handler := PricingResolve(svc, nil)

	loc, veh := uuid.New(), uuid.New()
	url := "/api/v1/pricing/resolve?location_id=" + loc.String() + "&vehicle_id=" + veh.String() + "&month=7&rental_days=12"
	req := withTenant(httptest.NewRequest(http.MethodGet, url, nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	want := pricing.PricingLookupKey{LocationID: loc, VehicleID: veh, Month: 7, DayRange: enums.DayRange11To13}
	if svc.lastKey != want {
		t.Fatalf("expected key %+v got %+v", want, svc.lastKey)
	}
}

func TestPricingResolveMissingRowIsBusinessError(t *testing.T) {
	svc := &stubPricingService{err: pkgerrors.New(pkgerrors.CodePricingUnavailable, "no active price")}
	handler := PricingResolve(svc, nil)

	url := "/api/v1/pricing/resolve?location_id=" + uuid.NewString() + "&vehicle_id=" + uuid.NewString() + "&month=1&day_range=30%2B"
	req := withTenant(httptest.NewRequest(http.MethodGet, url, nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastKey.DayRange != enums.DayRange30Plus {
		t.Fatalf("expected explicit tier, got %q", svc.lastKey.DayRange)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodePricingUnavailable) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
}

func TestPricingUpsertUnknownVehicleIsBadRequest(t *testing.T) {
	svc := &stubPricingService{err: pkgerrors.MissingReference("vehicle_id", "vehicle")}
	handler := PricingUpsert(svc, nil)

	body := `{"location_id":"` + uuid.NewString() + `","vehicle_id":"` + uuid.NewString() + `","month":4,"day_range":"1-3","price":"90"}`
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/pricing", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) || envelope.Error.Details["field"] != "vehicle_id" {
		t.Fatalf("unexpected error %+v", envelope.Error)
	}
}

func TestPricingListRequiresMonth(t *testing.T) {
	handler := PricingList(&stubPricingService{}, nil)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/api/v1/pricing?location_id="+uuid.NewString(), nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPricingBulkUpsertMapsRows(t *testing.T) {
	svc := &stubPricingService{bulk: &pricing.BulkResult{Upserted: 1, Skipped: []pricing.SkippedRow{}, DryRun: true}}
	handler := PricingBulkUpsert(svc, nil)

	veh := uuid.New()
	body := `{"location_id":"` + uuid.NewString() + `","month":3,"dry_run":true,"pricings":[{"vehicle_id":"` + veh.String() + `","day_range":"4-6","price":"320.00","min_days":2}]}`
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/pricing/bulk", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.lastBulk.DryRun || svc.lastBulk.Month != 3 || len(svc.lastBulk.Rows) != 1 {
		t.Fatalf("unexpected input %+v", svc.lastBulk)
	}
	row := svc.lastBulk.Rows[0]
	if row.VehicleID != veh || row.DayRange != enums.DayRange4To6 || !row.Price.Equal(decimal.NewFromInt(320)) || row.MinDays != 2 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestPricingBulkUpsertRejectsEmptyRows(t *testing.T) {
	handler := PricingBulkUpsert(&stubPricingService{}, nil)

	body := `{"location_id":"` + uuid.NewString() + `","month":3,"pricings":[]}`
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/pricing/bulk", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPricingBulkCopyOptionalPrice(t *testing.T) {
	svc := &stubPricingService{copied: &pricing.BulkCopyResult{Upserted: 24, Vehicles: 2, Months: 12}}
	handler := PricingBulkCopy(svc, nil)

	body := `{"location_id":"` + uuid.NewString() + `","source_vehicle_id":"` + uuid.NewString() + `","source_month":6,"day_range":"1-3"}`
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/pricing/bulk-copy", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCopy.Price != nil || svc.lastCopy.SourceMonth != 6 {
		t.Fatalf("unexpected input %+v", svc.lastCopy)
	}
}

func TestPricingRemoveReportsCount(t *testing.T) {
	svc := &stubPricingService{removedCnt: 14}
	handler := PricingRemove(svc, nil)

	url := "/api/v1/pricing?location_id=" + uuid.NewString() + "&month=11"
	req := withTenant(httptest.NewRequest(http.MethodDelete, url, nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["removed"] != 14 || svc.lastMonth != 11 {
		t.Fatalf("unexpected payload %+v month %d", envelope.Data, svc.lastMonth)
	}
}

func TestDeliveryPricingResolveMissIsNotAnError(t *testing.T) {
	svc := &stubDeliveryService{result: delivery.ResolveResult{Found: false}}
	handler := DeliveryPricingResolve(svc, nil)

	origin, dest := uuid.New(), uuid.New()
	url := "/api/v1/delivery-pricing/resolve?location_id=" + origin.String() + "&delivery_location_id=" + dest.String()
	req := withTenant(httptest.NewRequest(http.MethodGet, url, nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOrigin != origin || svc.lastDestination != dest {
		t.Fatalf("direction swapped: %s -> %s", svc.lastOrigin, svc.lastDestination)
	}
	var envelope struct {
		Data delivery.ResolveResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Found || envelope.Data.Row != nil {
		t.Fatalf("expected miss, got %+v", envelope.Data)
	}
}

func TestDeliveryPricingBulkUpsert(t *testing.T) {
	svc := &stubDeliveryService{}
	handler := DeliveryPricingBulkUpsert(svc, nil)

	body := `{"location_id":"` + uuid.NewString() + `","strict":true,"rows":[{"delivery_location_id":"` + uuid.NewString() + `","distance":"12.5","fee":"40"}]}`
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/delivery-pricing/bulk", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.lastBulk.Strict || len(svc.lastBulk.Rows) != 1 || !svc.lastBulk.Rows[0].Fee.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected input %+v", svc.lastBulk)
	}
}
