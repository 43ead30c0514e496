package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Weekday is a lower-case English day name used as opening-hours key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Week lists the days in calendar order starting Monday.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

const closedValue = "closed"

// DayHours is either a closed marker or a time range such as "11:00-22:00".
type DayHours struct {
	Closed bool
	Range  string
}

// ClosedDay returns a DayHours marking the day closed.
func ClosedDay() DayHours { return DayHours{Closed: true} }

// OpenRange returns a DayHours for the given time range.
func OpenRange(r string) DayHours { return DayHours{Range: r} }

func (d DayHours) String() string {
	if d.Closed {
		return closedValue
	}
	return d.Range
}

// MarshalJSON renders the day as "closed" or its range string.
func (d DayHours) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the string form written by MarshalJSON.
func (d *DayHours) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return eris.Wrap(err, "model: decode day hours")
	}
	if s == closedValue {
		*d = ClosedDay()
		return nil
	}
	*d = OpenRange(s)
	return nil
}

// OpeningHours maps each parsed day to its hours. A nil map means the source
// format could not be parsed.
type OpeningHours map[Weekday]DayHours
