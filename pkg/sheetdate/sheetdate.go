// Package sheetdate parses the date and timestamp cells the lead sheet emits.
//
// Sheet cells arrive in several shapes: en-GB day-first strings typed by
// people ("10/01/2025", "10-01-2025 14:30"), ISO dates, and the
// "2025-01-10T09:00:00.000Z" form the script produces for native date cells.
// Parse never fails; it reports a Fallback result instead so callers can tell
// a real timestamp from a substituted one.
package sheetdate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SheetLayout is the timestamp layout written to the sheet (en-GB, 24h)
const SheetLayout = "02/01/2006 15:04:05"

// DateLayout is the layout used for plain date fields such as next follow-up date
const DateLayout = "2006-01-02"

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Result is the outcome of parsing one cell
type Result struct {
	Time time.Time
	// Fallback is true when the cell could not be parsed and Time is the
	// substitute instant supplied by the caller
	Fallback bool
	Raw      string
}

// OK reports whether the cell held a real timestamp
func (r Result) OK() bool { return !r.Fallback }

// Parse parses raw in loc. On failure it returns now with Fallback set.
func Parse(raw string, now time.Time, loc *time.Location) Result {
	if loc == nil {
		loc = time.Local
	}
	res := Result{Raw: raw}

	t, err := parse(strings.TrimSpace(raw), loc)
	if err != nil {
		res.Time = now
		res.Fallback = true
		return res
	}
	res.Time = t
	return res
}

// ParseStrict parses raw in loc and returns an error instead of a fallback
func ParseStrict(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return parse(strings.TrimSpace(raw), loc)
}

func parse(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}

	s = strings.ReplaceAll(s, ",", "")
	datePart, timePart, _ := strings.Cut(s, " ")
	timePart = strings.TrimSpace(timePart)

	parts := strings.Split(strings.ReplaceAll(datePart, "-", "/"), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", datePart)
	}

	var year, month, day int
	var err error
	if len(parts[0]) == 4 {
		year, month, day, err = atoi3(parts[0], parts[1], parts[2])
	} else {
		day, month, year, err = atoi3(parts[0], parts[1], parts[2])
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", datePart, err)
	}

	hour, minute, sec, err := parseClock(timePart)
	if err != nil {
		return time.Time{}, err
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, fmt.Errorf("date out of range %q", datePart)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
	// time.Date normalizes 31/02 into March; reject that
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("date out of range %q", datePart)
	}
	return t, nil
}

func parseClock(s string) (int, int, int, error) {
	if s == "" {
		return 0, 0, 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("unrecognized time %q", s)
	}
	if len(parts) == 2 {
		parts = append(parts, "0")
	}
	h, m, sec, err := atoi3(parts[0], parts[1], parts[2])
	if err != nil || h > 23 || m > 59 || sec > 59 || h < 0 || m < 0 || sec < 0 {
		return 0, 0, 0, fmt.Errorf("unrecognized time %q", s)
	}
	return h, m, sec, nil
}

func atoi3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

// FormatSheet formats t the way new rows are timestamped
func FormatSheet(t time.Time) string {
	return t.Format(SheetLayout)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayKey returns the yyyy-mm-dd form of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
