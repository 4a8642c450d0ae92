// Package week computes the header week number and the Monday of the current week.
package week

import (
	"fmt"
	"math"
	"time"
)

// Number returns the week-of-year shown in the header:
// ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7), in t's location.
// Days since Jan 1 is fractional, so the time of day counts.
func Number(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.Sub(jan1).Hours() / 24
	return int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
}

// Monday returns midnight of the Monday that starts t's week.
// Sunday belongs to the week that began six days earlier.
func Monday(t time.Time) time.Time {
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	d := t.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// Label formats the week's Monday as "(M/D)".
func Label(t time.Time) string {
	m := Monday(t)
	return fmt.Sprintf("(%d/%d)", int(m.Month()), m.Day())
}

// Header is "Week N (M/D)".
func Header(t time.Time) string {
	return fmt.Sprintf("Week %d %s", Number(t), Label(t))
}
