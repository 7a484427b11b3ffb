package services

import "time"

// accrualDateFor places a recurring template's day-of-month in the target
// month, clamping to the month's last day (day 31 in April lands on the 30th,
// day 30 in February on the 28th or 29th).
func accrualDateFor(year int, month time.Month, day int) time.Time {
	last := lastDayOfMonth(year, month)
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
