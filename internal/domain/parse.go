package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// meridiemRe finds an am/pm marker directly after a digit, with or
	// without separating space: "8am", "8 am", "8:30 P.M" (after "." -> ":").
	meridiemRe = regexp.MustCompile(`(?i)(\d)\s*([ap])[:.]?\s*m[:.]?`)

	// conjunctionRe matches the word "and" between two no-parking windows.
	conjunctionRe = regexp.MustCompile(`(?i)\band\b`)

	// ampersandRe normalizes spacing around "&" so splitting on " & " works.
	ampersandRe = regexp.MustCompile(`\s*&\s*`)

	noParkingReplacer = strings.NewReplacer(
		"Midnight", "12am", "MIDNIGHT", "12am", "midnight", "12am",
		"Noon", "12pm", "NOON", "12pm", "noon", "12pm",
		".", ":",
	)

	clockLayouts = []string{"3:04 PM", "3 PM"}
)

// ParseRules parses every rule field of a record. It always returns the rules
// it could build; the error, when non-nil, joins one *InvalidTimeFormatError
// per malformed time field.
func ParseRules(rec RawRecord) (RuleSet, error) {
	p := ruleParser{locationID: rec.LocationID()}
	var rules RuleSet

	if days, ok := ParseDayRange(rec.ActiveDays); ok {
		rules.Active = &RecurrenceRule{
			Kind:  KindActive,
			Days:  days,
			Weeks: AllWeeks,
			Begin: p.timeField("enbegin", rec.ActiveBegin),
			End:   p.timeField("enend", rec.ActiveEnd),
		}
	}

	if days, weeks, ok := ParseSweepingSchedule(rec.SweepingDay); ok {
		rules.Sweeping = &RecurrenceRule{
			Kind:  KindSweeping,
			Days:  days,
			Weeks: weeks,
			Begin: p.timeField("pkgswbeg", rec.SweepingBegin),
			End:   p.timeField("pkgswend", rec.SweepingEnd),
		}
	}

	ranges := ParseNoParkingDays(rec.NoParkingDays)
	times, err := ParseNoParkingTimes(rec.NoParkingTimes)
	if err != nil {
		p.fail("noparktime", err)
	}
	if len(ranges) > 0 {
		rules.NoParking = append(rules.NoParking, RecurrenceRule{
			Kind: KindNoParking, Days: ranges[0], Weeks: AllWeeks, Begin: times[0], End: times[1],
		})
		if times[2] != nil {
			// A second time window with only one day range reuses the first range.
			days := ranges[0]
			if len(ranges) > 1 {
				days = ranges[1]
			}
			rules.NoParking = append(rules.NoParking, RecurrenceRule{
				Kind: KindNoParking, Days: days, Weeks: AllWeeks, Begin: times[2], End: times[3],
			})
		}
	}

	return rules, errors.Join(p.errs...)
}

type ruleParser struct {
	locationID int64
	errs       []error
}

func (p *ruleParser) timeField(field, raw string) *TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		p.fail(field, err)
		return nil
	}
	return t
}

func (p *ruleParser) fail(field string, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			p.fail(field, e)
		}
		return
	}
	var tfe *InvalidTimeFormatError
	if errors.As(err, &tfe) {
		tfe.LocationID = p.locationID
		tfe.Field = field
	}
	p.errs = append(p.errs, err)
}

// ParseDayRange converts "MON-FRI" into the weekdays walked from the first day
// to the second, inclusive, wrapping past Sunday when needed. A single day
// ("SAT") yields that day. Blank or unrecognized input reports ok=false.
func ParseDayRange(s string) (DayRange, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return nil, false
	}
	start, ok := parseWeekday(parts[0])
	if !ok {
		return nil, false
	}
	end := start
	if len(parts) == 2 {
		if end, ok = parseWeekday(parts[1]); !ok {
			return nil, false
		}
	}

	days := make(DayRange, 0, 7)
	for d := start; ; d = (d + 1) % 7 {
		days = append(days, d)
		if d == end {
			return days, true
		}
	}
}

// parseWeekday maps a weekday name to its index using its first three letters.
func parseWeekday(s string) (Weekday, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range weekdayNames {
		if s[:3] == name {
			return Weekday(i), true
		}
	}
	return 0, false
}

// ParseSweepingSchedule parses "2 TUE" (second Tuesday of the month) or
// "TUE" (every Tuesday).
func ParseSweepingSchedule(s string) (DayRange, WeekOfMonthSet, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, 0, false
	}

	if s[0] >= '0' && s[0] <= '9' {
		fields := strings.Fields(s)
		week := int(s[0] - '0')
		if len(fields) < 2 || week < 1 || week > 5 {
			return nil, 0, false
		}
		day, ok := parseWeekday(fields[1])
		if !ok {
			return nil, 0, false
		}
		return DayRange{day}, WeeksOf(week), true
	}

	day, ok := parseWeekday(s)
	if !ok {
		return nil, 0, false
	}
	return DayRange{day}, AllWeeks, true
}

// ParseNoParkingDays splits a compound "MON-FRI & SAT" into at most two day
// ranges. The result is empty when the first range is absent and has one
// element when only the first is present.
func ParseNoParkingDays(s string) []DayRange {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.SplitN(ampersandRe.ReplaceAllString(s, " & "), " & ", 3)
	first, ok := ParseDayRange(parts[0])
	if !ok {
		return nil
	}
	ranges := []DayRange{first}
	if len(parts) > 1 {
		if second, ok := ParseDayRange(parts[1]); ok {
			ranges = append(ranges, second)
		}
	}
	return ranges
}

// ParseNoParkingTimes parses a compound "7am-9am & 4pm-6pm" into
// [begin1, end1, begin2, end2]. Missing positions are nil.
func ParseNoParkingTimes(s string) ([4]*TimeOfDay, error) {
	var out [4]*TimeOfDay
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}

	s = noParkingReplacer.Replace(s)
	s = conjunctionRe.ReplaceAllString(s, "&")
	s = ampersandRe.ReplaceAllString(s, " & ")

	var values []string
	for _, window := range strings.Split(s, " & ") {
		values = append(values, strings.Split(window, "-")...)
	}

	var errs []error
	for i, v := range values {
		if i >= len(out) {
			break
		}
		t, err := ParseTimeOfDay(v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[i] = t
	}
	return out, errors.Join(errs...)
}

// ParseTimeOfDay parses "H:MM AM" or "H AM" in any case and with or without a
// space before the marker. Blank input returns nil and no error.
func ParseTimeOfDay(s string) (*TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	normalized := strings.Join(strings.Fields(meridiemRe.ReplaceAllString(s, "$1 ${2}M")), " ")
	normalized = strings.ToUpper(normalized)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return &TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return nil, &InvalidTimeFormatError{Raw: s}
}
