package dre

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Aggregation modes accepted by MergeAccountResults.
const (
	ModeMonthly = "mensal"
	ModeAnnual  = "anual"
)

// MonthKey derives the monthly period key "MM-YYYY" for a date.
func MonthKey(d Date) string {
	return fmt.Sprintf("%02d-%d", d.Month, d.Year)
}

// YearKey derives the annual period key "YYYY" for a monthly key.
// Keys that are already annual pass through unchanged.
func YearKey(period string) string {
	if idx := strings.Index(period, "-"); idx >= 0 {
		return period[idx+1:]
	}
	return period
}

// parsePeriod decomposes a period key into (year, month). Annual keys
// yield month 0 so they sort before any month of the same year.
func parsePeriod(period string) (year, month int, ok bool) {
	parts := strings.Split(period, "-")
	switch len(parts) {
	case 1:
		y, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		return y, 0, true
	case 2:
		m, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		y, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false
		}
		return y, m, true
	default:
		return 0, 0, false
	}
}

// PeriodBefore orders period keys chronologically, year major and month
// minor. "11-2024" sorts before "01-2025" even though the strings do not.
func PeriodBefore(a, b string) bool {
	ay, am, aok := parsePeriod(a)
	by, bm, bok := parsePeriod(b)
	if !aok || !bok {
		return a < b
	}
	if ay != by {
		return ay < by
	}
	return am < bm
}

// SortPeriods orders period keys chronologically in place and returns
// the slice for convenience.
func SortPeriods(periods []string) []string {
	sort.Slice(periods, func(i, j int) bool { return PeriodBefore(periods[i], periods[j]) })
	return periods
}

// periodSetKeys materialises a period set as a chronologically sorted
// slice.
func periodSetKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for p := range set {
		keys = append(keys, p)
	}
	return SortPeriods(keys)
}
