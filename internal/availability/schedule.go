package availability

import (
	"fmt"
	"time"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	clockLayout = "15:04"
)

// ParseDate parses a venue-local YYYY-MM-DD date.  The result is midnight
// of that date with a UTC label; no zone conversion is applied.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperror.Newf(apperror.CodeInvalidRequest, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseMonth parses a YYYY-MM month and returns its first day.
func ParseMonth(s string) (time.Time, error) {
	m, err := time.ParseInLocation(monthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperror.Newf(apperror.CodeInvalidRequest, "invalid month %q, expected YYYY-MM", s)
	}
	return m, nil
}

// clockOffset converts "HH:MM" into a duration since midnight.  "24:00"
// is the end of the day.
func clockOffset(s string) (time.Duration, error) {
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ExpandSchedule returns the candidate start times offered for date.
// Opening-hours entries for the date's weekday are walked in input order,
// stepping by the game's slot interval while a full session still fits
// before the entry's end.  Overlapping entries may emit the same start
// more than once.
func ExpandSchedule(schedule model.Schedule, date string, game model.Game) ([]time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return expandDay(schedule, day, game)
}

func expandDay(schedule model.Schedule, day time.Time, game model.Game) ([]time.Time, error) {
	if game.SlotIntervalMins <= 0 {
		return nil, apperror.Newf(apperror.CodeInvalidSchedule, "slot interval must be positive, got %d", game.SlotIntervalMins)
	}
	duration := time.Duration(game.DurationMins) * time.Minute
	step := time.Duration(game.SlotIntervalMins) * time.Minute
	weekday := int(day.Weekday())

	var starts []time.Time
	for _, oh := range schedule.OpeningHours {
		if oh.DayOfWeek != weekday {
			continue
		}
		open, err := clockOffset(oh.Start)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidSchedule, err.Error())
		}
		closeAt, err := clockOffset(oh.End)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidSchedule, err.Error())
		}
		if closeAt <= open {
			return nil, apperror.Newf(apperror.CodeInvalidSchedule, "opening hours %s-%s end before they start", oh.Start, oh.End)
		}
		end := day.Add(closeAt)
		for slot := day.Add(open); !slot.Add(duration).After(end); slot = slot.Add(step) {
			starts = append(starts, slot)
		}
	}
	return starts, nil
}
