package domain

import (
	"sort"
	"time"
)

// DayFormat is the calendar-day key format used by schedules. Day keys are
// always rendered in UTC.
const DayFormat = "2006-01-02"

// DayKey renders the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Allocation is an ephemeral activity allocation produced by upstream
// selection: one activity with the number of occurrences to place inside the
// scheduling window.
type Allocation struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Concern string `json:"concern"`
	Total   int    `json:"total"`
}

// ScheduleEntry is one activity occurrence placed on a schedule day.
type ScheduleEntry struct {
	Key          string `bson:"key" json:"key"`
	Concern      string `bson:"concern" json:"concern"`
	OccurrenceID string `bson:"occurrenceId,omitempty" json:"occurrenceId,omitempty"`
}

// Schedule maps calendar-day keys to the occurrences placed on that day.
// Days with zero occurrences must not keep an empty entry; removal helpers
// drop the key once its list is drained.
type Schedule map[string][]ScheduleEntry

// Days returns the schedule's day keys sorted chronologically by parsed date
// value. A lexical sort of the keys is not equivalent across formats and is
// deliberately not used.
func (s Schedule) Days() []string {
	days := make([]string, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		di, erri := time.Parse(DayFormat, days[i])
		dj, errj := time.Parse(DayFormat, days[j])
		if erri != nil || errj != nil {
			return days[i] < days[j]
		}
		return di.Before(dj)
	})
	return days
}

// Count returns the total number of occurrences across all days.
func (s Schedule) Count() int {
	n := 0
	for _, entries := range s {
		n += len(entries)
	}
	return n
}
