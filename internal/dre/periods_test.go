package dre

import (
	"reflect"
	"testing"
)

func TestMonthKeyZeroPadsMonth(t *testing.T) {
	if got := MonthKey(Date{Day: 3, Month: 1, Year: 2025}); got != "01-2025" {
		t.Fatalf("expected 01-2025 got %s", got)
	}
	if got := MonthKey(Date{Day: 15, Month: 11, Year: 2024}); got != "11-2024" {
		t.Fatalf("expected 11-2024 got %s", got)
	}
}

func TestPeriodBeforeIsChronologicalNotLexicographic(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"01-2025", "01-2026", true},
		{"11-2024", "01-2025", true},
		{"01-2025", "11-2024", false},
		{"02-2024", "02-2024", false},
		{"2024", "01-2024", true},
		{"12-2023", "2024", true},
	}
	for _, tc := range cases {
		if got := PeriodBefore(tc.a, tc.b); got != tc.want {
			t.Fatalf("PeriodBefore(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSortPeriods(t *testing.T) {
	got := SortPeriods([]string{"01-2025", "11-2024", "02-2024", "12-2024"})
	want := []string{"02-2024", "11-2024", "12-2024", "01-2025"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestYearKey(t *testing.T) {
	if got := YearKey("03-2024"); got != "2024" {
		t.Fatalf("expected 2024 got %s", got)
	}
	if got := YearKey("2024"); got != "2024" {
		t.Fatalf("expected 2024 got %s", got)
	}
}
