package cache

import (
	"strings"

	"github.com/google/uuid"
)

const (
	locationNamespace = "loc"
	pricingNamespace  = "pricing"
)

// LocationPrefix covers every cached read derived from the tenant's location
// hierarchy, delivery pairs included.
func LocationPrefix(tenantID uuid.UUID) string {
	return locationNamespace + ":" + tenantID.String() + ":"
}

// PricingPrefix covers every cached pricing matrix resolve for the tenant.
func PricingPrefix(tenantID uuid.UUID) string {
	return pricingNamespace + ":" + tenantID.String() + ":"
}

func LocationKey(tenantID uuid.UUID, parts ...string) string {
	return LocationPrefix(tenantID) + strings.Join(parts, ":")
}

func PricingKey(tenantID uuid.UUID, parts ...string) string {
	return PricingPrefix(tenantID) + strings.Join(parts, ":")
}
