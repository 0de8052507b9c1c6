package campaigns

import (
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is what a campaign takes off a base price.
type Discount struct {
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
}

// Selection is the winning campaign and its effect.
type Selection struct {
	Campaign models.Campaign
	Discount Discount
}

// CalculateDiscount applies campaign to base. The amount never exceeds base,
// so FinalPrice is never negative.
func CalculateDiscount(base decimal.Decimal, c *models.Campaign) Discount {
	if base.IsNegative() {
		base = decimal.Zero
	}
	var amount decimal.Decimal
	switch c.DiscountType {
	case enums.DiscountTypePercent:
		amount = base.Mul(c.DiscountValue).Div(hundred).Round(2)
	case enums.DiscountTypeFixed:
		amount = c.DiscountValue
	default:
		amount = decimal.Zero
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(base) {
		amount = base
	}
	return Discount{DiscountAmount: amount, FinalPrice: base.Sub(amount)}
}

// SelectBest returns the campaign with the largest discount amount against
// base. Equal amounts go to the smallest id so the choice never depends on
// input order. Nil when campaigns is empty.
func SelectBest(base decimal.Decimal, campaigns []models.Campaign) *Selection {
	var best *Selection
	for i := range campaigns {
		d := CalculateDiscount(base, &campaigns[i])
		if best == nil {
			best = &Selection{Campaign: campaigns[i], Discount: d}
			continue
		}
		cmp := d.DiscountAmount.Cmp(best.Discount.DiscountAmount)
		if cmp > 0 || (cmp == 0 && campaigns[i].ID.String() < best.Campaign.ID.String()) {
			best = &Selection{Campaign: campaigns[i], Discount: d}
		}
	}
	return best
}
