package campaigns

import (
	"testing"
	"time"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMatches(t *testing.T) {
	loc, otherLoc := uuid.New(), uuid.New()
	car, otherCar := uuid.New(), uuid.New()
	cat, otherCat := uuid.New(), uuid.New()

	base := models.Campaign{
		StartDate: day("2025-06-01"),
		EndDate:   day("2025-06-30"),
		IsActive:  true,
	}
	cand := MatchCandidate{
		LocationID:        loc,
		VehicleID:         car,
		VehicleCategoryID: &cat,
		PickupDate:        time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		RentalDays:        5,
	}

	cases := []struct {
		name   string
		mutate func(c *models.Campaign, m *MatchCandidate)
		want   bool
	}{
		{"wildcard scope", func(*models.Campaign, *MatchCandidate) {}, true},
		{"inactive", func(c *models.Campaign, _ *MatchCandidate) { c.IsActive = false }, false},
		{"first day late in the evening", func(_ *models.Campaign, m *MatchCandidate) {
			m.PickupDate = time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
		}, true},
		{"last day late in the evening", func(_ *models.Campaign, m *MatchCandidate) {
			m.PickupDate = time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
		}, true},
		{"day before window", func(_ *models.Campaign, m *MatchCandidate) { m.PickupDate = day("2025-05-31") }, false},
		{"day after window", func(_ *models.Campaign, m *MatchCandidate) { m.PickupDate = day("2025-07-01") }, false},
		{"location scoped match", func(c *models.Campaign, _ *MatchCandidate) { c.LocationID = &loc }, true},
		{"location scoped miss", func(c *models.Campaign, _ *MatchCandidate) { c.LocationID = &otherLoc }, false},
		{"vehicle scoped miss", func(c *models.Campaign, _ *MatchCandidate) { c.VehicleID = &otherCar }, false},
		{"category scoped match", func(c *models.Campaign, _ *MatchCandidate) { c.VehicleCategoryID = &cat }, true},
		{"category scoped miss", func(c *models.Campaign, _ *MatchCandidate) { c.VehicleCategoryID = &otherCat }, false},
		{"category scoped, candidate unknown", func(c *models.Campaign, m *MatchCandidate) {
			c.VehicleCategoryID = &cat
			m.VehicleCategoryID = nil
		}, false},
		{"min days met", func(c *models.Campaign, _ *MatchCandidate) { c.MinRentalDays = 5 }, true},
		{"min days not met", func(c *models.Campaign, _ *MatchCandidate) { c.MinRentalDays = 6 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, m := base, cand
			tc.mutate(&c, &m)
			if got := Matches(&c, m); got != tc.want {
				t.Fatalf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}
