// Package domain models on-street parking regulations published by the city's
// open-data portal and answers "where can I park, and until when" queries.
//
// # Data Source
//
// Each feature of the upstream on-street parking dataset describes one curb
// segment. Property names are lowercased on ingest. The fields that drive the
// schedule model are:
//
//	pkgenday             active (enforced) days, e.g. "MON-FRI"
//	enbegin / enend      active hours, e.g. "8:00 AM" / "6 PM"
//	pkgsday              street sweeping day, e.g. "TUE" or "2 TUE"
//	pkgswbeg / pkgswend  sweeping hours
//	noparkdays           compound no-parking days, e.g. "MON-FRI & SAT"
//	noparktime           compound no-parking hours, e.g. "7am-9am & 4pm-6pm"
//	timelimit            posted time limit, e.g. "2 Hours", "No Parking Anytime"
//	pkgtype              curb zone type, e.g. "Single Space Meter", "Red Zone"
//
// # String Conventions
//
// Day ranges are three-letter weekday abbreviations joined by "-". A range is
// walked forward from the first day until the second is reached, so
// "FRI-MON" covers Friday, Saturday, Sunday and Monday. Only the first three
// letters of each name are significant ("Monday" == "MON").
//
// Sweeping days carry an optional leading week-of-month digit: "2 TUE" is the
// second Tuesday of the month, "TUE" is every Tuesday. Week of month is
// (day-1)/7+1, so days 1-7 are week 1 and days 29-31 are week 5.
//
// Times are 12-hour clock strings, "H:MM AM" or "H AM". No-parking hour
// strings are the least consistent field; before parsing they are normalized:
//
//	"Midnight" -> "12am", "Noon" -> "12pm", "." -> ":", "and" -> "&"
//
// and a space is inserted before the am/pm marker.
//
// # Absence
//
// Blank fields mean "not regulated by this field". Parsing never fails on a
// blank or unrecognized day string; the rule it would have produced is simply
// absent. A non-empty time string that matches neither clock grammar is a data
// defect and is reported as an [*InvalidTimeFormatError] carrying the location
// id, field name and raw text. A rule missing its begin or end time stays in
// the [RuleSet] but contributes no windows to a timeline.
//
// # Timelines
//
// Rules are expanded into dated windows over a rolling horizon (100 days by
// default) and merged into one ordered timeline per location. Sweeping and
// no-parking windows take priority over active windows; gaps between windows
// are filled with explicit "open" windows. See [Resolve].
//
// Sweeping forecasts use their own recurrence: the nearest matching weekday,
// or for a digit-prefixed day outside the first week of the month, the first
// matching weekday of the next month. See [NextSweeping].
package domain
