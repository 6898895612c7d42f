package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFilter is returned when a filter name can not be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterRange selects how far back the account details go.
type FilterRange int

const (
	FilterAll FilterRange = iota
	FilterCurrentMonth
	FilterCurrentWeek
	FilterCurrentWorkPeriod
)

var filterNames = map[FilterRange]string{
	FilterAll:               "all",
	FilterCurrentMonth:      "month",
	FilterCurrentWeek:       "week",
	FilterCurrentWorkPeriod: "workperiod",
}

func (f FilterRange) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FilterRange(%d)", int(f))
}

// ParseFilterRange accepts the names produced by String, case-insensitively.
func ParseFilterRange(s string) (FilterRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range filterNames {
		if name == s {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

func (f FilterRange) MarshalText() ([]byte, error) {
	if _, ok := filterNames[f]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFilter, int(f))
	}
	return []byte(f.String()), nil
}

func (f *FilterRange) UnmarshalText(text []byte) error {
	parsed, err := ParseFilterRange(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// LowerBound returns the earliest date included by the filter.
// ok is false for FilterAll, which has no lower bound.
func (f FilterRange) LowerBound(now, workPeriodStart time.Time) (bound time.Time, ok bool) {
	switch f {
	case FilterCurrentMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case FilterCurrentWeek:
		// weeks start on Monday
		offset := (int(now.Weekday()) + 6) % 7
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return day.AddDate(0, 0, -offset), true
	case FilterCurrentWorkPeriod:
		return workPeriodStart, true
	default:
		return time.Time{}, false
	}
}
