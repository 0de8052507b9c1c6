package pricing

import (
	"fmt"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
)

// ClassifyRentalDays maps a rental length to its pricing tier. Every day
// count >= 1 lands in exactly one tier.
func ClassifyRentalDays(days int) (enums.DayRange, error) {
	if days < 1 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rental days must be at least 1, got %d", days)).
			WithDetails(map[string]any{"reason": "INVALID_DURATION", "rental_days": days})
	}
	for _, tier := range enums.DayRanges() {
		if tier.Contains(days) {
			return tier, nil
		}
	}
	// unreachable while the last tier is open ended
	return "", pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("no tier covers %d days", days))
}

// ValidateMonth rejects months outside 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("month must be between 1 and 12, got %d", month)).
			WithDetails(map[string]any{"reason": "INVALID_MONTH", "month": month})
	}
	return nil
}
