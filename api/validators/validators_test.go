package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Month int    `json:"month" validate:"min=1,max=12"`
	Kind  string `json:"kind" validate:"oneof=percent fixed"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":13,"kind":"bogus"}`))

	var p samplePayload
	err := DecodeJSONBody(req, &p)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name message %q", details["name"])
	}
	if details["month"] != "must be at most 12" {
		t.Fatalf("unexpected month message %q", details["month"])
	}
	if details["kind"] != "must be one of percent fixed" {
		t.Fatalf("unexpected kind message %q", details["kind"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","month":1,"kind":"fixed","extra":true}`))

	var p samplePayload
	if err := DecodeJSONBody(req, &p); pkgerrors.As(err) == nil {
		t.Fatalf("expected typed error got %v", err)
	}
}

func TestQueryHelpers(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?month=3&location_id="+id.String()+"&active=true&bad=zz", nil)

	month, err := RequireQueryInt(req, "month", 1, 12)
	if err != nil || month != 3 {
		t.Fatalf("expected 3 got %d (%v)", month, err)
	}
	if _, err := RequireQueryInt(req, "missing", 1, 12); err == nil {
		t.Fatal("expected missing month to fail")
	}

	loc, err := RequireQueryUUID(req, "location_id")
	if err != nil || loc != id {
		t.Fatalf("expected %s got %s (%v)", id, loc, err)
	}
	if _, err := ParseQueryUUID(req, "bad"); err == nil {
		t.Fatal("expected invalid uuid to fail")
	}

	active, err := ParseQueryBool(req, "active")
	if err != nil || active == nil || !*active {
		t.Fatalf("expected true got %v (%v)", active, err)
	}
	if absent, err := ParseQueryBool(req, "nope"); err != nil || absent != nil {
		t.Fatalf("expected nil got %v (%v)", absent, err)
	}
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := PathUUID(req, "id")
	if err != nil || got != id {
		t.Fatalf("expected %s got %s (%v)", id, got, err)
	}

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "nope")
	if _, err := PathUUID(req, "id"); err == nil {
		t.Fatal("expected invalid path id to fail")
	}
}
