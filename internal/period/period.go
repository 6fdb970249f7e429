// Package period resolves user-selected reporting windows into concrete
// calendar-date intervals.
//
// A Spec names a granularity (week, month, year, custom) plus the parameters
// that granularity needs; Resolve turns it into an inclusive [start, end]
// interval and the immediately preceding interval of equal length, used for
// period-over-period comparison.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	Week   Granularity = "week"
	Month  Granularity = "month"
	Year   Granularity = "year"
	Custom Granularity = "custom"
)

type (
	Granularity string

	// Spec is a user-selected reporting window before resolution.
	// Which fields are meaningful depends on Granularity: Reference for
	// week, Year/MonthNum for month, Year for year, Start/End for custom.
	Spec struct {
		Granularity Granularity
		Reference   core.Date
		Year        int
		MonthNum    int
		Start       core.Date
		End         core.Date
	}

	// Interval is an inclusive [Start, End] calendar-date range.
	Interval struct {
		Start core.Date
		End   core.Date
	}

	// Window pairs a resolved interval with its preceding interval of
	// identical length.
	Window struct {
		Current  Interval
		Previous Interval
	}
)

var (
	ErrInvalidPeriodFormat = errors.New("invalid period format")
	ErrInvalidRange        = errors.New("invalid range: start after end")
	ErrNotNavigable        = errors.New("custom periods are not navigable")
)

// Days returns the number of calendar days in the interval, inclusive.
func (iv Interval) Days() int {
	return int(iv.End.Time.Sub(iv.Start.Time).Hours()/24) + 1
}

// Contains reports whether d falls inside the interval, both ends inclusive.
func (iv Interval) Contains(d core.Date) bool {
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// IsFullYear reports whether the interval covers exactly one calendar year.
func (iv Interval) IsFullYear() bool {
	return iv.Start.Month() == 1 && iv.Start.Day() == 1 &&
		iv.End.Month() == 12 && iv.End.Day() == 31 &&
		iv.Start.Year() == iv.End.Year()
}

// mondayOf returns the Monday of the calendar week containing d.
// ISO weekday rule: Sunday counts as day 7.
func mondayOf(d core.Date) core.Date {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDays(-(weekday - 1))
}

// monthInterval returns the first..last calendar day of (year, month).
func monthInterval(year, month int) Interval {
	start := core.NewDate(year, month, 1)
	// Day 0 of the next month is the last day of this one.
	end := core.Date{Time: time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)}
	return Interval{Start: start, End: end}
}

// Resolve converts a spec into its interval and the preceding interval of
// equal length. today supplies the week reference when the spec carries none.
func Resolve(spec Spec, today core.Date) (Window, error) {
	switch spec.Granularity {
	case Week:
		ref := spec.Reference
		if ref.IsZero() {
			ref = today
		}
		start := mondayOf(ref)
		cur := Interval{Start: start, End: start.AddDays(6)}
		return Window{
			Current:  cur,
			Previous: Interval{Start: start.AddDays(-7), End: start.AddDays(-1)},
		}, nil

	case Month:
		if err := validateYear(spec.Year); err != nil {
			return Window{}, err
		}
		if spec.MonthNum < 1 || spec.MonthNum > 12 {
			return Window{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriodFormat, spec.MonthNum)
		}
		prevYear, prevMonth := spec.Year, spec.MonthNum-1
		if prevMonth < 1 {
			prevMonth = 12
			prevYear--
		}
		return Window{
			Current:  monthInterval(spec.Year, spec.MonthNum),
			Previous: monthInterval(prevYear, prevMonth),
		}, nil

	case Year:
		if err := validateYear(spec.Year); err != nil {
			return Window{}, err
		}
		return Window{
			Current:  Interval{Start: core.NewDate(spec.Year, 1, 1), End: core.NewDate(spec.Year, 12, 31)},
			Previous: Interval{Start: core.NewDate(spec.Year-1, 1, 1), End: core.NewDate(spec.Year-1, 12, 31)},
		}, nil

	case Custom:
		if spec.Start.IsZero() || spec.End.IsZero() {
			return Window{}, fmt.Errorf("%w: custom period needs start and end", ErrInvalidPeriodFormat)
		}
		if spec.Start.After(spec.End) {
			return Window{}, ErrInvalidRange
		}
		cur := Interval{Start: spec.Start, End: spec.End}
		length := cur.Days()
		return Window{
			Current:  cur,
			Previous: Interval{Start: spec.Start.AddDays(-length), End: spec.Start.AddDays(-1)},
		}, nil

	default:
		return Window{}, fmt.Errorf("%w: unknown granularity %q", ErrInvalidPeriodFormat, spec.Granularity)
	}
}

// Next returns the spec shifted one unit forward. Custom specs fail with
// ErrNotNavigable.
func Next(spec Spec) (Spec, error) {
	return shift(spec, 1)
}

// Prev returns the spec shifted one unit back.
func Prev(spec Spec) (Spec, error) {
	return shift(spec, -1)
}

func shift(spec Spec, units int) (Spec, error) {
	switch spec.Granularity {
	case Week:
		out := spec
		if out.Reference.IsZero() {
			return Spec{}, fmt.Errorf("%w: week spec has no reference date", ErrInvalidPeriodFormat)
		}
		// Normalize to Monday so repeated shifts stay stable.
		out.Reference = mondayOf(out.Reference).AddDays(7 * units)
		return out, nil
	case Month:
		out := spec
		out.MonthNum += units
		for out.MonthNum > 12 {
			out.MonthNum -= 12
			out.Year++
		}
		for out.MonthNum < 1 {
			out.MonthNum += 12
			out.Year--
		}
		return out, nil
	case Year:
		out := spec
		out.Year += units
		return out, nil
	case Custom:
		return Spec{}, ErrNotNavigable
	default:
		return Spec{}, fmt.Errorf("%w: unknown granularity %q", ErrInvalidPeriodFormat, spec.Granularity)
	}
}

// CanNavigateForward reports whether moving the spec one unit forward keeps
// its interval start at or before today. Custom specs never navigate.
func CanNavigateForward(spec Spec, today core.Date) bool {
	next, err := Next(spec)
	if err != nil {
		return false
	}
	window, err := Resolve(next, today)
	if err != nil {
		return false
	}
	return !window.Current.Start.After(today)
}

// ParseSpec builds a Spec from wire parameters: "2024" for a year,
// "2024-03" for a month, a reference date for a week (empty means today),
// and explicit start/end dates for a custom range.
func ParseSpec(granularity, value, start, end string) (Spec, error) {
	switch Granularity(strings.TrimSpace(granularity)) {
	case Week:
		spec := Spec{Granularity: Week}
		if v := strings.TrimSpace(value); v != "" {
			ref, err := core.ParseDate(v)
			if err != nil {
				return Spec{}, fmt.Errorf("%w: week reference %q", ErrInvalidPeriodFormat, value)
			}
			spec.Reference = ref
		}
		return spec, nil

	case Month:
		parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
		if len(parts) != 2 {
			return Spec{}, fmt.Errorf("%w: month spec %q, want YYYY-MM", ErrInvalidPeriodFormat, value)
		}
		year, err := parseYear(parts[0])
		if err != nil {
			return Spec{}, err
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return Spec{}, fmt.Errorf("%w: month %q out of range", ErrInvalidPeriodFormat, parts[1])
		}
		return Spec{Granularity: Month, Year: year, MonthNum: month}, nil

	case Year:
		year, err := parseYear(strings.TrimSpace(value))
		if err != nil {
			return Spec{}, err
		}
		return Spec{Granularity: Year, Year: year}, nil

	case Custom:
		from, err := core.ParseDate(start)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: start date %q", ErrInvalidPeriodFormat, start)
		}
		to, err := core.ParseDate(end)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: end date %q", ErrInvalidPeriodFormat, end)
		}
		return Spec{Granularity: Custom, Start: from, End: to}, nil

	default:
		return Spec{}, fmt.Errorf("%w: unknown granularity %q", ErrInvalidPeriodFormat, granularity)
	}
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: year %q must have 4 digits", ErrInvalidPeriodFormat, s)
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", ErrInvalidPeriodFormat, s)
	}
	return year, nil
}

func validateYear(year int) error {
	if year < 1000 || year > 9999 {
		return fmt.Errorf("%w: year %d must have 4 digits", ErrInvalidPeriodFormat, year)
	}
	return nil
}
