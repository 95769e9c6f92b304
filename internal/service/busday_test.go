package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 2024-01-01 was a Monday.
func date(day int, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{name: "same instant", start: date(1, 12), end: date(1, 12), want: 0},
		{name: "same day later hour", start: date(1, 9), end: date(1, 17), want: 0},
		{name: "end before start", start: date(8, 12), end: date(1, 12), want: 0},
		{name: "monday to tuesday", start: date(1, 12), end: date(2, 12), want: 1},
		{name: "thursday to friday", start: date(4, 12), end: date(5, 12), want: 1},
		{name: "friday to saturday", start: date(5, 12), end: date(6, 12), want: 0},
		{name: "friday to sunday", start: date(5, 12), end: date(7, 12), want: 0},
		{name: "friday to monday crosses weekend", start: date(5, 12), end: date(8, 12), want: 1},
		{name: "saturday to monday", start: date(6, 12), end: date(8, 12), want: 1},
		{name: "monday to next monday", start: date(1, 12), end: date(8, 12), want: 5},
		{name: "two full weeks", start: date(1, 12), end: date(15, 12), want: 10},
		{name: "start day itself never counts", start: date(1, 0), end: date(1, 23), want: 0},
		{name: "partial day still counts the end day", start: date(1, 23), end: date(2, 1), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BusinessDaysBetween(tt.start, tt.end, time.UTC)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBusinessDaysBetweenUsesLocation(t *testing.T) {
	// 23:30 UTC on Monday Jan 1 is already Tuesday in UTC+2, so a Tuesday
	// midday end is the same calendar day there and counts nothing.
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, time.January, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 2, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 1, BusinessDaysBetween(start, end, time.UTC))
	require.Equal(t, 0, BusinessDaysBetween(start, end, loc))
}

func TestBusinessDaysBetweenNilLocationDefaultsToUTC(t *testing.T) {
	require.Equal(t, 1, BusinessDaysBetween(date(1, 12), date(2, 12), nil))
}
