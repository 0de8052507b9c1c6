package campaigns

import (
	"math/rand"
	"testing"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func campaign(id string, kind enums.DiscountType, value string) models.Campaign {
	return models.Campaign{
		ID:            uuid.MustParse(id),
		DiscountType:  kind,
		DiscountValue: dec(value),
		IsActive:      true,
	}
}

func TestCalculateDiscount(t *testing.T) {
	cases := []struct {
		name       string
		base       string
		campaign   models.Campaign
		wantAmount string
		wantFinal  string
	}{
		{"percent", "200", campaign(uuid.NewString(), enums.DiscountTypePercent, "15"), "30", "170"},
		{"percent rounds to cents", "99.99", campaign(uuid.NewString(), enums.DiscountTypePercent, "12.5"), "12.5", "87.49"},
		{"fixed", "200", campaign(uuid.NewString(), enums.DiscountTypeFixed, "25"), "25", "175"},
		{"fixed capped at base", "40", campaign(uuid.NewString(), enums.DiscountTypeFixed, "60"), "40", "0"},
		{"full percent", "80", campaign(uuid.NewString(), enums.DiscountTypePercent, "100"), "80", "0"},
		{"zero base", "0", campaign(uuid.NewString(), enums.DiscountTypeFixed, "10"), "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateDiscount(dec(tc.base), &tc.campaign)
			if !got.DiscountAmount.Equal(dec(tc.wantAmount)) {
				t.Fatalf("amount = %s, want %s", got.DiscountAmount, tc.wantAmount)
			}
			if !got.FinalPrice.Equal(dec(tc.wantFinal)) {
				t.Fatalf("final = %s, want %s", got.FinalPrice, tc.wantFinal)
			}
		})
	}
}

func TestDiscountNeverExceedsBase(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	kinds := []enums.DiscountType{enums.DiscountTypePercent, enums.DiscountTypeFixed}
	for i := 0; i < 2000; i++ {
		base := decimal.New(rng.Int63n(100000), -2)
		value := decimal.New(rng.Int63n(20000)+1, -2)
		kind := kinds[rng.Intn(len(kinds))]
		if kind == enums.DiscountTypePercent && value.GreaterThan(hundred) {
			value = hundred
		}
		c := models.Campaign{ID: uuid.New(), DiscountType: kind, DiscountValue: value}
		got := CalculateDiscount(base, &c)
		if got.FinalPrice.IsNegative() || got.DiscountAmount.GreaterThan(base) {
			t.Fatalf("base %s %s %s gave amount %s final %s", base, kind, value, got.DiscountAmount, got.FinalPrice)
		}
		if !got.DiscountAmount.Add(got.FinalPrice).Equal(base) {
			t.Fatalf("amount + final != base for %s", base)
		}
	}
}

func TestSelectBestComparesAmounts(t *testing.T) {
	// 10% of 300 is 30, which beats a fixed 25 even though 25 > 10.
	percent := campaign("00000000-0000-0000-0000-0000000000aa", enums.DiscountTypePercent, "10")
	fixed := campaign("00000000-0000-0000-0000-000000000001", enums.DiscountTypeFixed, "25")

	best := SelectBest(dec("300"), []models.Campaign{fixed, percent})
	if best == nil || best.Campaign.ID != percent.ID {
		t.Fatalf("expected percent campaign to win, got %+v", best)
	}
	if !best.Discount.DiscountAmount.Equal(dec("30")) {
		t.Fatalf("amount = %s", best.Discount.DiscountAmount)
	}

	best = SelectBest(dec("200"), []models.Campaign{fixed, percent})
	if best == nil || best.Campaign.ID != fixed.ID {
		t.Fatalf("expected fixed campaign to win at base 200, got %+v", best)
	}
}

func TestSelectBestTieBreaksOnSmallestID(t *testing.T) {
	a := campaign("11111111-0000-0000-0000-000000000000", enums.DiscountTypeFixed, "20")
	b := campaign("22222222-0000-0000-0000-000000000000", enums.DiscountTypePercent, "10")
	c := campaign("33333333-0000-0000-0000-000000000000", enums.DiscountTypeFixed, "20")

	orders := [][]models.Campaign{{a, b, c}, {c, b, a}, {b, c, a}, {c, a, b}}
	for _, order := range orders {
		best := SelectBest(dec("200"), order)
		if best == nil || best.Campaign.ID != a.ID {
			t.Fatalf("order %v picked %+v", order, best)
		}
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if got := SelectBest(dec("100"), nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
