package model

// OpeningHours is one opening window on a weekday.  Start and End are
// venue-local wall clock times in "HH:MM" form.  DayOfWeek follows
// time.Weekday (0 = Sunday).
type OpeningHours struct {
    DayOfWeek int    `json:"day_of_week"`
    Start     string `json:"start"`
    End       string `json:"end"`
}

// Schedule holds the weekly recurring opening hours of one game.  A day
// may appear several times (split shifts).
type Schedule struct {
    OrgID        string         `db:"org_id" json:"org_id"`
    GameID       string         `db:"game_id" json:"game_id"`
    OpeningHours []OpeningHours `db:"-" json:"opening_hours"`
}
