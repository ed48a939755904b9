package fieldx

import "time"

// DateRange lists every calendar day from start to end inclusive, each at
// midnight UTC. Clock time and zone of the inputs are ignored. start after
// end yields an empty slice.
func DateRange(start, end time.Time) []time.Time {
	start, end = dateOf(start), dateOf(end)
	if start.After(end) {
		return []time.Time{}
	}

	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func FirstDayOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func LastDayOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), DaysInMonth(d.Year(), int(d.Month())), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in month (1-12) of year under the
// Gregorian leap rule. Any other month number counts as 31 days.
func DaysInMonth(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
