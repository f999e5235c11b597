package util

import "time"

// SameMonth reports whether a and b fall in the same calendar month and year.
// b's location is used for both, so an expense is placed in the month the
// caller sees.
func SameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// SameDay reports whether a and b fall on the same calendar day in b's location
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsFutureDay reports whether t is on a calendar day after now
func IsFutureDay(t, now time.Time) bool {
	return StartOfDay(t.In(now.Location())).After(StartOfDay(now))
}
