package engine

import (
	"time"
)

// =============================================================================
// RECURRING-DATE SCHEDULER
// =============================================================================
// Computes the next annual occurrence of a month/day relative to an injected
// "today". Two callers share it with different lookahead windows: birthday
// reminders (30 days) and IRL revision anniversaries (61 days). The window is
// caller policy; the scheduler itself is window-agnostic.

// Occurrence is the next calendar date carrying a given month/day, plus the
// whole-day distance from today. DaysUntil is always >= 0.
type Occurrence struct {
	Date      Date
	DaysUntil int
}

// NextOccurrence returns the next date >= today with the given month/day,
// rolling to next year when this year's occurrence has already passed.
// February 29 resolves to February 28 in common years.
func NextOccurrence(md MonthDay, today Date) Occurrence {
	next := occurrenceInYear(md, today.Year())
	if next.Before(today) {
		next = occurrenceInYear(md, today.Year()+1)
	}
	return Occurrence{Date: next, DaysUntil: DaysBetween(today, next)}
}

func occurrenceInYear(md MonthDay, year int) Date {
	day := md.Day
	if md.Month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return NewDate(year, md.Month, day)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
