package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekday indexes days of the week starting at Monday=0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalText encodes the weekday as its three-letter name.
func (d Weekday) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, fmt.Errorf("weekday %d out of range", int(d))
	}
	return []byte(weekdayNames[d]), nil
}

func (d *Weekday) UnmarshalText(text []byte) error {
	w, ok := parseWeekday(string(text))
	if !ok {
		return fmt.Errorf("unknown weekday %q", text)
	}
	*d = w
	return nil
}

// WeekdayOf converts a time's weekday to the Monday-first index.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// WeekOfMonth returns the ordinal week of t's month: days 1-7 are week 1,
// 8-14 week 2, and so on up to week 5.
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// DayRange is the ordered set of weekdays a rule applies to.
type DayRange []Weekday

// Contains reports whether d is in the range.
func (r DayRange) Contains(d Weekday) bool {
	for _, day := range r {
		if day == d {
			return true
		}
	}
	return false
}

// WeekOfMonthSet is a bitmask of weeks 1-5; bit n-1 is week n.
// The zero value means unspecified and matches every week.
type WeekOfMonthSet uint8

// AllWeeks matches weeks 1 through 5.
const AllWeeks WeekOfMonthSet = 0b11111

// WeeksOf builds a set from week ordinals, ignoring values outside 1-5.
func WeeksOf(weeks ...int) WeekOfMonthSet {
	var s WeekOfMonthSet
	for _, w := range weeks {
		if w >= 1 && w <= 5 {
			s |= 1 << (w - 1)
		}
	}
	return s
}

// Contains reports whether week is in the set.
func (s WeekOfMonthSet) Contains(week int) bool {
	if week < 1 || week > 5 {
		return false
	}
	return s == 0 || s&(1<<(week-1)) != 0
}

// Weeks lists the ordinals in the set in ascending order.
func (s WeekOfMonthSet) Weeks() []int {
	if s == 0 {
		s = AllWeeks
	}
	weeks := make([]int, 0, 5)
	for w := 1; w <= 5; w++ {
		if s&(1<<(w-1)) != 0 {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

func (s WeekOfMonthSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Weeks())
}

func (s *WeekOfMonthSet) UnmarshalJSON(data []byte) error {
	var weeks []int
	if err := json.Unmarshal(data, &weeks); err != nil {
		return err
	}
	*s = WeeksOf(weeks...)
	return nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool { return t.minutes() < o.minutes() }

// On places t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := time.Parse("15:04", string(text))
	if err != nil {
		return fmt.Errorf("parse time of day %q: %w", text, err)
	}
	*t = TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}
	return nil
}

// Kind labels rules and timeline windows.
type Kind string

const (
	KindActive    Kind = "active"
	KindSweeping  Kind = "sweeping"
	KindNoParking Kind = "no-parking"
	KindOpen      Kind = "open"
	KindUnknown   Kind = "unknown"
)

// IsRestriction reports whether windows of this kind take priority over
// active windows.
func (k Kind) IsRestriction() bool {
	return k == KindSweeping || k == KindNoParking
}

// RecurrenceRule is a date-independent description of when a rule applies.
// A nil Begin or End means the time was blank or malformed; such a rule is
// present but has no daily window.
type RecurrenceRule struct {
	Kind  Kind           `json:"kind"`
	Days  DayRange       `json:"days"`
	Weeks WeekOfMonthSet `json:"weeks"`
	Begin *TimeOfDay     `json:"begin,omitempty"`
	End   *TimeOfDay     `json:"end,omitempty"`
}

// Overnight reports whether the daily window ends on the following day.
func (r RecurrenceRule) Overnight() bool {
	return r.Begin != nil && r.End != nil && r.End.Before(*r.Begin)
}

// RuleSet holds every rule parsed for one location. A nil Active or Sweeping
// means the location has no such rule; NoParking holds zero, one or two rules.
type RuleSet struct {
	Active    *RecurrenceRule  `json:"active,omitempty"`
	Sweeping  *RecurrenceRule  `json:"sweeping,omitempty"`
	NoParking []RecurrenceRule `json:"noParking,omitempty"`
}

// Empty reports whether no rule of any kind is present.
func (s RuleSet) Empty() bool {
	return s.Active == nil && s.Sweeping == nil && len(s.NoParking) == 0
}

// Timed reports whether r has both a begin and an end time. Untimed rules are
// kept as parsed but never expanded.
func (r RecurrenceRule) Timed() bool {
	return r.Begin != nil && r.End != nil
}

// Timed returns the present rules that can be expanded, in expansion order.
func (s RuleSet) Timed() []RecurrenceRule {
	var timed []RecurrenceRule
	for _, r := range s.All() {
		if r.Timed() {
			timed = append(timed, r)
		}
	}
	return timed
}

// All returns the present rules in expansion order: active, sweeping, then
// no-parking.
func (s RuleSet) All() []RecurrenceRule {
	rules := make([]RecurrenceRule, 0, 2+len(s.NoParking))
	if s.Active != nil {
		rules = append(rules, *s.Active)
	}
	if s.Sweeping != nil {
		rules = append(rules, *s.Sweeping)
	}
	return append(rules, s.NoParking...)
}
