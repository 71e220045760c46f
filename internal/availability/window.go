// Package availability computes bookable slots for a game on a date.  It
// performs no I/O: callers load the game, rooms, schedule, holds and
// bookings and pass them in together with the reference time used for
// lazy hold expiry.
package availability

import "time"

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.  Touching intervals do not overlap, so
// back-to-back sessions are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Window is a half-open time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether w and o intersect.
func (w Window) Overlaps(o Window) bool {
	return Overlaps(w.Start, w.End, o.Start, o.End)
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// BlockingWindow extends a session by the room buffer.  The room is
// occupied for [start, end+buffer).
func BlockingWindow(start, end time.Time, bufferMins int) Window {
	return Window{Start: start, End: end.Add(time.Duration(bufferMins) * time.Minute)}
}

// WallClock returns the wall-clock reading of t in loc, relabelled UTC so
// it compares with dates from ParseDate.
func WallClock(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}
