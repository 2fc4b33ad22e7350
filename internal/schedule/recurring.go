// Package schedule projects weekly patterns onto calendar dates.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"alcyxob/coaching-app/internal/domain"
)

var (
	ErrNoWeekdays       = fmt.Errorf("%w: at least one weekday is required", domain.ErrInvalidInput)
	ErrInvalidWeekCount = fmt.Errorf("%w: week count must be at least 1", domain.ErrInvalidInput)
	ErrInvalidWeekday   = fmt.Errorf("%w: weekday must be between 0 (Sunday) and 6 (Saturday)", domain.ErrInvalidInput)
)

// RecurringDates returns, in ascending order, every occurrence of the given
// weekdays over weeks consecutive weeks starting at start. The first
// occurrence of a weekday is on or after start, so start itself is included
// when its weekday is selected. Only the calendar date of start is used.
//
// Duplicate weekdays are collapsed; the result has len(unique weekdays)*weeks
// entries, all at midnight UTC.
func RecurringDates(start time.Time, weekdays []time.Weekday, weeks int) ([]time.Time, error) {
	if len(weekdays) == 0 {
		return nil, ErrNoWeekdays
	}
	if weeks < 1 {
		return nil, ErrInvalidWeekCount
	}

	selected := make(map[time.Weekday]struct{}, len(weekdays))
	for _, wd := range weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWeekday, wd)
		}
		selected[wd] = struct{}{}
	}

	y, m, d := start.Date()
	day0 := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, len(selected)*weeks)
	for wd := range selected {
		delta := (int(wd) - int(day0.Weekday()) + 7) % 7
		for w := 0; w < weeks; w++ {
			dates = append(dates, day0.AddDate(0, 0, delta+7*w))
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// ParseWeekdays converts 0 (Sunday) .. 6 (Saturday) integers to weekdays.
func ParseWeekdays(days []int) ([]time.Weekday, error) {
	if len(days) == 0 {
		return nil, ErrNoWeekdays
	}
	out := make([]time.Weekday, len(days))
	for i, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWeekday, d)
		}
		out[i] = time.Weekday(d)
	}
	return out, nil
}
