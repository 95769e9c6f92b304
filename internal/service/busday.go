package service

import "time"

// BusinessDaysBetween counts the whole business days (Mon-Fri) that have
// elapsed between start and end in the given location. The count covers
// calendar days strictly after start's own day up to and including end's
// day; weekends are excluded and there is no holiday calendar. When end is
// not after start the result is 0.
func BusinessDaysBetween(start, end time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	start = start.In(loc)
	end = end.In(loc)
	if !end.After(start) {
		return 0
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	count := 0
	for d := startDay.AddDate(0, 0, 1); !d.After(endDay); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
