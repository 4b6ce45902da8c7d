package domain

import (
	"sort"
	"time"
)

// DefaultHorizonDays is how far ahead rules are expanded.
const DefaultHorizonDays = 100

// ScheduleWindow is one dated instance of a rule, or an open gap between two.
type ScheduleWindow struct {
	Kind  Kind
	Begin time.Time
	End   time.Time
}

// TimelineEntry is the published form of a window. Begin and End are nil
// only for the single sentinel entry of a location without rules.
type TimelineEntry struct {
	Type  Kind       `json:"type"`
	Begin *time.Time `json:"begin"`
	End   *time.Time `json:"end"`
}

// Expand instantiates rule on every date in [reference, reference+horizonDays)
// whose weekday and week of month match. Windows whose end time is earlier
// than their begin time end on the following day. A rule without both a begin
// and an end time yields no windows.
func Expand(rule RecurrenceRule, reference time.Time, horizonDays int) []ScheduleWindow {
	if !rule.Timed() {
		return nil
	}
	begin, end := *rule.Begin, *rule.End
	start := startOfDay(reference)

	var windows []ScheduleWindow
	for i := 0; i < horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if !rule.Days.Contains(WeekdayOf(day)) || !rule.Weeks.Contains(WeekOfMonth(day)) {
			continue
		}
		endDay := day
		if end.Before(begin) {
			endDay = day.AddDate(0, 0, 1)
		}
		windows = append(windows, ScheduleWindow{
			Kind:  rule.Kind,
			Begin: begin.On(day),
			End:   end.On(endDay),
		})
	}
	return windows
}

// Resolve merges the windows of one location into an ordered timeline.
//
// Restriction windows (sweeping, no-parking) are never altered. An active
// window that strictly contains a restriction is split around it; any active
// window still overlapping a neighbour is then truncated to the neighbour's
// boundary, and emptied active windows are dropped. Remaining gaps are filled
// with open windows. Ordering is by end time with ties broken by begin time,
// produced by two stable sorts (begin, then end).
func Resolve(windows []ScheduleWindow) []ScheduleWindow {
	timeline := splitActive(windows)

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Begin.Before(timeline[j].Begin)
	})
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].End.Before(timeline[j].End)
	})

	last := len(timeline) - 1
	for i := range timeline {
		if timeline[i].Kind != KindActive {
			continue
		}
		if i > 0 && timeline[i-1].End.After(timeline[i].Begin) {
			timeline[i].Begin = timeline[i-1].End
		}
		if i < last && timeline[i+1].Begin.Before(timeline[i].End) {
			timeline[i].End = timeline[i+1].Begin
		}
	}

	out := make([]ScheduleWindow, 0, len(timeline))
	for _, w := range timeline {
		if w.Kind == KindActive && !w.End.After(w.Begin) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End.Before(w.Begin) {
			out = append(out, ScheduleWindow{Kind: KindOpen, Begin: out[n-1].End, End: w.Begin})
		}
		out = append(out, w)
	}
	return out
}

// splitActive copies windows, cutting each active window around every
// restriction window strictly inside it.
func splitActive(windows []ScheduleWindow) []ScheduleWindow {
	var restrictions []ScheduleWindow
	for _, w := range windows {
		if w.Kind.IsRestriction() {
			restrictions = append(restrictions, w)
		}
	}

	out := make([]ScheduleWindow, 0, len(windows))
	for _, w := range windows {
		if w.Kind != KindActive {
			out = append(out, w)
			continue
		}
		pieces := []ScheduleWindow{w}
		for _, r := range restrictions {
			next := make([]ScheduleWindow, 0, len(pieces)+1)
			for _, p := range pieces {
				if r.Begin.After(p.Begin) && r.End.Before(p.End) {
					next = append(next,
						ScheduleWindow{Kind: KindActive, Begin: p.Begin, End: r.Begin},
						ScheduleWindow{Kind: KindActive, Begin: r.End, End: p.End},
					)
					continue
				}
				next = append(next, p)
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	return out
}

// BuildTimeline expands and resolves every timed rule of a location. A
// location with no timed rules gets a single undated entry: "no-parking" when
// its posted time limit is "No Parking Anytime", otherwise "unknown".
func BuildTimeline(rules RuleSet, timeLimit string, reference time.Time, horizonDays int) []TimelineEntry {
	timed := rules.Timed()
	if len(timed) == 0 {
		kind := KindUnknown
		if timeLimit == noParkingAnytime {
			kind = KindNoParking
		}
		return []TimelineEntry{{Type: kind}}
	}

	var windows []ScheduleWindow
	for _, rule := range timed {
		windows = append(windows, Expand(rule, reference, horizonDays)...)
	}

	resolved := Resolve(windows)
	entries := make([]TimelineEntry, len(resolved))
	for i, w := range resolved {
		begin, end := w.Begin, w.End
		entries[i] = TimelineEntry{Type: w.Kind, Begin: &begin, End: &end}
	}
	return entries
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
