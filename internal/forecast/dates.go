package forecast

import "time"

// EndOfMonth returns the last day of t's month at midnight in t's location.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// FutureMonthEnds returns n consecutive month-end dates strictly after last.
func FutureMonthEnds(last time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := EndOfMonth(last.AddDate(0, 0, 1))
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		// day 1 avoids AddDate normalising Jan 31 + 1 month into March
		start := time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, first.Location())
		out[i] = EndOfMonth(start)
	}
	return out
}
