package campaigns

import (
	"time"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Matches reports whether campaign covers the candidate rental. Dates compare
// as calendar days so the time of day of the pickup never matters.
func Matches(c *models.Campaign, cand MatchCandidate) bool {
	if c == nil || !c.IsActive {
		return false
	}
	pickup := calendarDate(cand.PickupDate)
	if pickup.Before(calendarDate(c.StartDate)) || pickup.After(calendarDate(c.EndDate)) {
		return false
	}
	if !scopeMatches(c.LocationID, &cand.LocationID) ||
		!scopeMatches(c.VehicleID, &cand.VehicleID) ||
		!scopeMatches(c.VehicleCategoryID, cand.VehicleCategoryID) {
		return false
	}
	return c.MinRentalDays <= 0 || cand.RentalDays >= c.MinRentalDays
}

// scopeMatches treats an unset campaign field as a wildcard. A set field never
// matches an unknown candidate value.
func scopeMatches(scope, value *uuid.UUID) bool {
	if scope == nil {
		return true
	}
	return value != nil && *scope == *value
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
