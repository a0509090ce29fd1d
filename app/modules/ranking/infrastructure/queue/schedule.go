package rankingqueue

import "time"

// dailyAt fires once a day at Hour:00 UTC.
type dailyAt struct {
	Hour int
}

// Next returns the first Hour:00 UTC strictly after current.
func (d dailyAt) Next(current time.Time) time.Time {
	current = current.UTC()
	next := time.Date(current.Year(), current.Month(), current.Day(), d.Hour, 0, 0, 0, time.UTC)
	if !next.After(current) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// yearsToReconcile returns the ranking years a nightly run covers. In January
// late confirmations for December events still land, so the previous year is
// rebuilt too.
func yearsToReconcile(now time.Time) []int {
	now = now.UTC()
	if now.Month() == time.January {
		return []int{now.Year() - 1, now.Year()}
	}
	return []int{now.Year()}
}
