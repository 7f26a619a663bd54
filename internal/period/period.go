// Package period converts instants into canonical check-in period keys.
// Key equality is the sole definition of a duplicate check-in.
package period

import (
	"fmt"
	"time"

	"github.com/julianstephens/streakd/internal/models"
)

// Key identifies the cadence-defined time bucket an instant falls into.
// For DAILY habits it is the local calendar date; for WEEKLY habits it is the
// ISO-8601 (week-year, week-number) pair, where weeks start on Monday and
// week 1 contains the year's first Thursday. Keys are comparable with ==.
type Key struct {
	Cadence models.Cadence
	Year    int        // calendar year (daily) or ISO week-year (weekly)
	Month   time.Month // daily only
	Day     int        // daily only
	Week    int        // weekly only
}

// Of returns the period key for t under the given cadence.
func Of(cadence models.Cadence, t time.Time) Key {
	switch cadence {
	case models.CadenceWeekly:
		// ISO-8601: Dec 29-31 can land in week 1 of the next week-year and
		// Jan 1-3 in week 52/53 of the previous one.
		year, week := t.ISOWeek()
		return Key{Cadence: models.CadenceWeekly, Year: year, Week: week}
	default:
		year, month, day := t.Date()
		return Key{Cadence: models.CadenceDaily, Year: year, Month: month, Day: day}
	}
}

// String renders the key in its canonical storage form, e.g. "2021-01-04"
// for a daily key or "2020-W53" for a weekly key. The store enforces
// uniqueness of (habit, key string) per period.
func (k Key) String() string {
	if k.Cadence == models.CadenceWeekly {
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}
