package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) *TimeOfDay {
	return &TimeOfDay{Hour: h, Minute: m}
}

func TestParseDayRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected DayRange
		ok       bool
	}{
		{"weekdays", "MON-FRI", DayRange{Monday, Tuesday, Wednesday, Thursday, Friday}, true},
		{"wraps past sunday", "FRI-MON", DayRange{Friday, Saturday, Sunday, Monday}, true},
		{"full names", "Monday-Friday", DayRange{Monday, Tuesday, Wednesday, Thursday, Friday}, true},
		{"lowercase with spaces", " sat - sun ", DayRange{Saturday, Sunday}, true},
		{"single day", "SAT", DayRange{Saturday}, true},
		{"same start and end", "SUN-SUN", DayRange{Sunday}, true},
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"unknown day", "XYZ-FRI", nil, false},
		{"unknown end day", "MON-FUN", nil, false},
		{"too many parts", "MON-TUE-WED", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := ParseDayRange(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestParseSweepingSchedule(t *testing.T) {
	tests := []struct {
		name  string
		input string
		days  DayRange
		weeks WeekOfMonthSet
		ok    bool
	}{
		{"second tuesday", "2 TUE", DayRange{Tuesday}, WeeksOf(2), true},
		{"ordinal suffix", "1st WED", DayRange{Wednesday}, WeeksOf(1), true},
		{"every tuesday", "TUE", DayRange{Tuesday}, AllWeeks, true},
		{"full name", "Thursday", DayRange{Thursday}, AllWeeks, true},
		{"empty", "", nil, 0, false},
		{"week out of range", "9 TUE", nil, 0, false},
		{"digit without day", "2", nil, 0, false},
		{"unknown day", "2 XYZ", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, weeks, ok := ParseSweepingSchedule(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.days, days)
			assert.Equal(t, tt.weeks, weeks)
		})
	}
}

func TestParseNoParkingDays(t *testing.T) {
	t.Run("two ranges", func(t *testing.T) {
		ranges := ParseNoParkingDays("MON-FRI & SAT")
		require.Len(t, ranges, 2)
		assert.Equal(t, DayRange{Monday, Tuesday, Wednesday, Thursday, Friday}, ranges[0])
		assert.Equal(t, DayRange{Saturday}, ranges[1])
	})

	t.Run("tight ampersand", func(t *testing.T) {
		assert.Len(t, ParseNoParkingDays("MON-FRI&SAT-SUN"), 2)
	})

	t.Run("single range leaves second slot absent", func(t *testing.T) {
		ranges := ParseNoParkingDays("MON-FRI")
		require.Len(t, ranges, 1)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParseNoParkingDays(""))
	})

	t.Run("unparseable first range", func(t *testing.T) {
		assert.Empty(t, ParseNoParkingDays("DAILY & SAT"))
	})
}

func TestParseNoParkingTimes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [4]*TimeOfDay
	}{
		{"two windows", "7am-9am & 4pm-6pm", [4]*TimeOfDay{tod(7, 0), tod(9, 0), tod(16, 0), tod(18, 0)}},
		{"midnight", "Midnight-6am", [4]*TimeOfDay{tod(0, 0), tod(6, 0), nil, nil}},
		{"noon", "Noon-1pm", [4]*TimeOfDay{tod(12, 0), tod(13, 0), nil, nil}},
		{"dot separator and conjunction", "7.30am-9am and 4pm-6.15pm", [4]*TimeOfDay{tod(7, 30), tod(9, 0), tod(16, 0), tod(18, 15)}},
		{"spaces around dash", "10pm - 2am", [4]*TimeOfDay{tod(22, 0), tod(2, 0), nil, nil}},
		{"already spaced", "7 am-9 am", [4]*TimeOfDay{tod(7, 0), tod(9, 0), nil, nil}},
		{"empty", "", [4]*TimeOfDay{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, err := ParseNoParkingTimes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, times)
		})
	}

	t.Run("malformed value", func(t *testing.T) {
		times, err := ParseNoParkingTimes("7am-late")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTimeFormat))
		assert.Equal(t, tod(7, 0), times[0])
		assert.Nil(t, times[1])
	})
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *TimeOfDay
	}{
		{"hour and minute", "8:00 AM", tod(8, 0)},
		{"hour only", "6 PM", tod(18, 0)},
		{"midnight", "12 AM", tod(0, 0)},
		{"noon", "12 PM", tod(12, 0)},
		{"lowercase no space", "8:30am", tod(8, 30)},
		{"dotted marker", "9 p.m.", tod(21, 0)},
		{"leading zero", "08:15 AM", tod(8, 15)},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{"25 PM", "eight", "8:00", "8:75 AM"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			got, err := ParseTimeOfDay(bad)
			assert.Nil(t, got)
			var tfe *InvalidTimeFormatError
			require.ErrorAs(t, err, &tfe)
			assert.Equal(t, bad, tfe.Raw)
		})
	}
}

func TestParseRules(t *testing.T) {
	t.Run("all rule kinds", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{
			ObjectID:       1,
			ActiveDays:     "MON-FRI",
			ActiveBegin:    "8:00 AM",
			ActiveEnd:      "6:00 PM",
			SweepingDay:    "2 TUE",
			SweepingBegin:  "8 AM",
			SweepingEnd:    "10 AM",
			NoParkingDays:  "MON-FRI & SAT",
			NoParkingTimes: "7am-9am & 4pm-6pm",
		})
		require.NoError(t, err)

		require.NotNil(t, rules.Active)
		assert.Equal(t, KindActive, rules.Active.Kind)
		assert.Equal(t, AllWeeks, rules.Active.Weeks)
		assert.Equal(t, tod(8, 0), rules.Active.Begin)
		assert.Equal(t, tod(18, 0), rules.Active.End)

		require.NotNil(t, rules.Sweeping)
		assert.Equal(t, DayRange{Tuesday}, rules.Sweeping.Days)
		assert.Equal(t, WeeksOf(2), rules.Sweeping.Weeks)

		require.Len(t, rules.NoParking, 2)
		assert.Equal(t, DayRange{Saturday}, rules.NoParking[1].Days)
		assert.Equal(t, tod(16, 0), rules.NoParking[1].Begin)
		assert.Len(t, rules.All(), 4)
	})

	t.Run("second window reuses first day range", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{
			NoParkingDays:  "MON-FRI",
			NoParkingTimes: "7am-9am & 4pm-6pm",
		})
		require.NoError(t, err)
		require.Len(t, rules.NoParking, 2)
		assert.Equal(t, rules.NoParking[0].Days, rules.NoParking[1].Days)
		assert.Equal(t, tod(18, 0), rules.NoParking[1].End)
	})

	t.Run("second day range without second window is ignored", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{
			NoParkingDays:  "MON-FRI & SAT",
			NoParkingTimes: "7am-9am",
		})
		require.NoError(t, err)
		assert.Len(t, rules.NoParking, 1)
	})

	t.Run("empty record has no rules", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{})
		require.NoError(t, err)
		assert.True(t, rules.Empty())
	})

	t.Run("days without times is present but unconstrained", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{ActiveDays: "SAT-SUN"})
		require.NoError(t, err)
		require.NotNil(t, rules.Active)
		assert.Nil(t, rules.Active.Begin)
		assert.Nil(t, rules.Active.End)
	})

	t.Run("malformed times are reported with context", func(t *testing.T) {
		rules, err := ParseRules(RawRecord{
			ObjectID:       42,
			ActiveDays:     "MON-FRI",
			ActiveBegin:    "sometime",
			ActiveEnd:      "6 PM",
			NoParkingDays:  "SAT",
			NoParkingTimes: "7am-late",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat)

		var tfe *InvalidTimeFormatError
		require.ErrorAs(t, err, &tfe)
		assert.Equal(t, int64(42), tfe.LocationID)
		assert.Equal(t, "enbegin", tfe.Field)
		assert.Equal(t, "sometime", tfe.Raw)
		assert.Contains(t, err.Error(), "noparktime")

		require.NotNil(t, rules.Active)
		assert.Nil(t, rules.Active.Begin)
		assert.Equal(t, tod(18, 0), rules.Active.End)
		require.Len(t, rules.NoParking, 1)
		assert.Equal(t, tod(7, 0), rules.NoParking[0].Begin)
	})
}

func TestWeekOfMonthSet(t *testing.T) {
	s := WeeksOf(1, 3, 9)
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(6))
	assert.Equal(t, []int{1, 3}, s.Weeks())

	var unspecified WeekOfMonthSet
	assert.True(t, unspecified.Contains(5))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, unspecified.Weeks())
}

func TestTimeFormatDefects(t *testing.T) {
	_, err := ParseRules(RawRecord{
		ObjectID:       7,
		ActiveDays:     "MON",
		ActiveBegin:    "soon",
		ActiveEnd:      "later",
		NoParkingDays:  "SAT",
		NoParkingTimes: "dawn-dusk",
	})
	require.Error(t, err)

	defects := TimeFormatDefects(errors.Join(err, errors.New("unrelated")))
	require.Len(t, defects, 4)
	fields := make([]string, len(defects))
	for i, d := range defects {
		assert.Equal(t, int64(7), d.LocationID)
		fields[i] = d.Field
	}
	assert.Equal(t, []string{"enbegin", "enend", "noparktime", "noparktime"}, fields)

	assert.Nil(t, TimeFormatDefects(nil))
}
