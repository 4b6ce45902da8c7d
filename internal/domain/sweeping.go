package domain

import (
	"math"
	"time"
)

// SweepingForecast is the next street sweeping window for a location.
type SweepingForecast struct {
	Begin      time.Time `json:"begin"`
	End        time.Time `json:"end"`
	HoursUntil int       `json:"hoursUntil"`
}

// NextSweeping returns the next sweeping window for a schedule string such as
// "TUE" or "2 TUE" that has not ended by now. A window already in progress is
// returned as is. ok is false when the schedule does not parse.
//
// The candidate date is the nearest matching weekday on or after today. A
// week-of-month schedule keeps that candidate only when it falls in the first
// seven days of its month; otherwise it moves to the first matching weekday on
// or after the 1st of the following month. When now is already past the
// candidate's window, both ends move forward one week.
func NextSweeping(schedule string, begin, end TimeOfDay, now time.Time) (start, stop time.Time, ok bool) {
	days, weeks, ok := ParseSweepingSchedule(schedule)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	target := days[0]

	date := onOrAfter(startOfDay(now), target)
	if weeks != AllWeeks && date.Day() > 7 {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		date = onOrAfter(next, target)
	}

	start, stop = sweepWindow(date, begin, end)
	if now.After(stop) {
		start, stop = start.AddDate(0, 0, 7), stop.AddDate(0, 0, 7)
	}
	return start, stop, true
}

// HoursUntil returns the whole hours from now until start, or 0 when start
// has already passed.
func HoursUntil(start, now time.Time) int {
	h := math.Floor(start.Sub(now).Hours())
	if h < 0 {
		return 0
	}
	return int(h)
}

// ForecastSweeping builds the forecast for a sweeping rule. It returns nil when
// the rule lacks a begin or end time or the schedule does not parse.
func ForecastSweeping(schedule string, rule *RecurrenceRule, now time.Time) *SweepingForecast {
	if rule == nil || rule.Begin == nil || rule.End == nil {
		return nil
	}
	start, stop, ok := NextSweeping(schedule, *rule.Begin, *rule.End, now)
	if !ok {
		return nil
	}
	return &SweepingForecast{Begin: start, End: stop, HoursUntil: HoursUntil(start, now)}
}

// onOrAfter returns the first date on or after day that falls on weekday.
func onOrAfter(day time.Time, weekday Weekday) time.Time {
	return day.AddDate(0, 0, (int(weekday)-int(WeekdayOf(day))+7)%7)
}

func sweepWindow(date time.Time, begin, end TimeOfDay) (time.Time, time.Time) {
	endDay := date
	if end.Before(begin) {
		endDay = date.AddDate(0, 0, 1)
	}
	return begin.On(date), end.On(endDay)
}
