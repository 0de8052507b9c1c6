package enums

import "fmt"

// DayRange maps to the day_range column on location_vehicle_pricing. Each tier
// covers a contiguous block of rental days; the last tier is open ended.
type DayRange string

const (
	DayRange1To3   DayRange = "1-3"
	DayRange4To6   DayRange = "4-6"
	DayRange7To10  DayRange = "7-10"
	DayRange11To13 DayRange = "11-13"
	DayRange14To20 DayRange = "14-20"
	DayRange21To29 DayRange = "21-29"
	DayRange30Plus DayRange = "30+"
)

// validDayRanges is ordered by ascending lower bound.
var validDayRanges = []DayRange{
	DayRange1To3,
	DayRange4To6,
	DayRange7To10,
	DayRange11To13,
	DayRange14To20,
	DayRange21To29,
	DayRange30Plus,
}

var dayRangeBounds = map[DayRange][2]int{
	DayRange1To3:   {1, 3},
	DayRange4To6:   {4, 6},
	DayRange7To10:  {7, 10},
	DayRange11To13: {11, 13},
	DayRange14To20: {14, 20},
	DayRange21To29: {21, 29},
	DayRange30Plus: {30, 0},
}

// DayRanges returns every tier in ascending order.
func DayRanges() []DayRange {
	out := make([]DayRange, len(validDayRanges))
	copy(out, validDayRanges)
	return out
}

// String implements fmt.Stringer.
func (d DayRange) String() string {
	return string(d)
}

// IsValid reports whether the value is a known tier.
func (d DayRange) IsValid() bool {
	_, ok := dayRangeBounds[d]
	return ok
}

// Bounds returns the inclusive day bounds of the tier. max is 0 for the open tier.
func (d DayRange) Bounds() (min, max int) {
	b := dayRangeBounds[d]
	return b[0], b[1]
}

// Contains reports whether days falls inside the tier.
func (d DayRange) Contains(days int) bool {
	lo, hi := d.Bounds()
	if lo == 0 {
		return false
	}
	return days >= lo && (hi == 0 || days <= hi)
}

// ParseDayRange converts raw input into a DayRange.
func ParseDayRange(value string) (DayRange, error) {
	for _, candidate := range validDayRanges {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid day range %q", value)
}
