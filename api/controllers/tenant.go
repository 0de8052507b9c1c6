package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/carhire-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
)

func tenantFromRequest(r *http.Request) (uuid.UUID, error) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	return tenantID, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
