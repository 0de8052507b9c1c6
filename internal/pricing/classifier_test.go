package pricing

import (
	"testing"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
)

func TestClassifyRentalDaysBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want enums.DayRange
	}{
		{1, enums.DayRange1To3},
		{3, enums.DayRange1To3},
		{4, enums.DayRange4To6},
		{6, enums.DayRange4To6},
		{7, enums.DayRange7To10},
		{10, enums.DayRange7To10},
		{11, enums.DayRange11To13},
		{13, enums.DayRange11To13},
		{14, enums.DayRange14To20},
		{20, enums.DayRange14To20},
		{21, enums.DayRange21To29},
		{29, enums.DayRange21To29},
		{30, enums.DayRange30Plus},
		{365, enums.DayRange30Plus},
	}
	for _, tc := range cases {
		got, err := ClassifyRentalDays(tc.days)
		if err != nil {
			t.Fatalf("ClassifyRentalDays(%d) returned error: %v", tc.days, err)
		}
		if got != tc.want {
			t.Fatalf("ClassifyRentalDays(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestEveryDayCountHasExactlyOneTier(t *testing.T) {
	for days := 1; days <= 10000; days++ {
		matches := 0
		for _, tier := range enums.DayRanges() {
			if tier.Contains(days) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("%d days matched %d tiers", days, matches)
		}
		got, err := ClassifyRentalDays(days)
		if err != nil || !got.Contains(days) {
			t.Fatalf("ClassifyRentalDays(%d) = %q, %v", days, got, err)
		}
	}
}

func TestClassifyRentalDaysRejectsNonPositive(t *testing.T) {
	for _, days := range []int{0, -1, -30} {
		_, err := ClassifyRentalDays(days)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("ClassifyRentalDays(%d) error = %v, want validation", days, err)
		}
		details, ok := typed.Details().(map[string]any)
		if !ok || details["reason"] != "INVALID_DURATION" {
			t.Fatalf("unexpected details %#v", typed.Details())
		}
	}
}

func TestValidateMonth(t *testing.T) {
	for month := 1; month <= 12; month++ {
		if err := ValidateMonth(month); err != nil {
			t.Fatalf("ValidateMonth(%d) = %v", month, err)
		}
	}
	for _, month := range []int{0, 13, -1} {
		typed := pkgerrors.As(ValidateMonth(month))
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("ValidateMonth(%d) should fail validation", month)
		}
	}
}
