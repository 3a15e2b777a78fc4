package travel

import "time"

// WorkingDays counts calendar days in [from, to] excluding weekends and the
// given public holidays. Holiday dates falling on weekends do not double
// subtract.
func WorkingDays(from, to time.Time, holidays []time.Time) int {
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format("2006-01-02")] = struct{}{}
	}

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, isHoliday := holidaySet[d.Format("2006-01-02")]; isHoliday {
			continue
		}
		days++
	}
	return days
}
