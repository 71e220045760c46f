package availability

import "time"

// CalendarQuery asks which days of Month have at least one slot.  The
// per-day fields mirror SlotQuery.
type CalendarQuery struct {
	SlotQuery
	Month string
}

// AvailableDates runs the slot generator once per day of the month and
// returns the YYYY-MM-DD dates with at least one open slot.
func AvailableDates(q CalendarQuery) ([]string, error) {
	first, err := ParseMonth(q.Month)
	if err != nil {
		return nil, err
	}
	dates := []string{}
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		slots, err := computeDay(q.SlotQuery, day)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, day.Format(dateLayout))
		}
	}
	return dates, nil
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(month string) (time.Time, time.Time, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, first.AddDate(0, 1, 0), nil
}
