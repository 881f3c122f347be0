// Package timeutil resolves user-supplied time expressions and named time
// frames into concrete instants and half-open ranges, and carries the
// ordering checks every mutating operation runs.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// Time resolution failures.
var (
	ErrInvalidTimeExpression = errors.New("invalid time expression")
	ErrInvalidTimeRange      = errors.New("invalid time range")
	ErrTimeInFuture          = errors.New("time lies in the future")
	ErrEndBeforeBegin        = errors.New("end time is before begin time")
)

// instant layouts accepted by ResolveInstant, tried in order.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// clock-only layouts, combined with today's date.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ResolveInstant parses an absolute time expression in the given location.
// An empty expression resolves to now. Accepted forms: "HH:MM[:SS]" (today
// at that time), "YYYY-MM-DD" (midnight), "YYYY-MM-DDTHH:MM[:SS]" and full
// RFC 3339.
func ResolveInstant(expr string, loc *time.Location, now time.Time) (time.Time, error) {
	if expr == "" {
		return now, nil
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, expr)
		if err != nil {
			continue
		}
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	for _, layout := range instantLayouts {
		t, err := time.ParseInLocation(layout, expr, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeExpression, expr)
}

// Frame is a named review window.
type Frame string

const (
	FrameToday     Frame = "today"
	FrameYesterday Frame = "yesterday"
	FrameThisWeek  Frame = "this-week"
	FrameLastWeek  Frame = "last-week"
	FrameThisMonth Frame = "this-month"
	FrameLastMonth Frame = "last-month"
)

// ParseFrame maps a keyword to a Frame.
func ParseFrame(s string) (Frame, error) {
	switch Frame(s) {
	case FrameToday, FrameYesterday, FrameThisWeek, FrameLastWeek, FrameThisMonth, FrameLastMonth:
		return Frame(s), nil
	}
	return "", fmt.Errorf("%w: unknown time frame %q", ErrInvalidTimeRange, s)
}

// ResolveFrame computes the half-open [start, end) boundaries of a named
// window, aligned to the calendar of loc. weekStart configures which weekday
// opens a week.
func ResolveFrame(frame Frame, loc *time.Location, now time.Time, weekStart time.Weekday) (time.Time, time.Time, error) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch frame {
	case FrameToday:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case FrameYesterday:
		return midnight.AddDate(0, 0, -1), midnight, nil
	case FrameThisWeek:
		start := startOfWeek(midnight, weekStart)
		return start, start.AddDate(0, 0, 7), nil
	case FrameLastWeek:
		start := startOfWeek(midnight, weekStart).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 7), nil
	case FrameThisMonth:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case FrameLastMonth:
		end := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return end.AddDate(0, -1, 0), end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown time frame %q", ErrInvalidTimeRange, frame)
}

// ResolveRange validates an explicit pair of bounds as a half-open range.
func ResolveRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s",
			ErrInvalidTimeRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}

// AssertNotFuture fails when t lies after now.
func AssertNotFuture(t, now time.Time) error {
	if t.After(now) {
		return fmt.Errorf("%w: %s", ErrTimeInFuture, t.Format(time.RFC3339))
	}
	return nil
}

// AssertOrdered fails when end precedes begin.
func AssertOrdered(begin, end time.Time) error {
	if end.Before(begin) {
		return fmt.Errorf("%w: %s < %s",
			ErrEndBeforeBegin, end.Format(time.RFC3339), begin.Format(time.RFC3339))
	}
	return nil
}

func startOfWeek(midnight time.Time, weekStart time.Weekday) time.Time {
	diff := int(midnight.Weekday()) - int(weekStart)
	if diff < 0 {
		diff += 7
	}
	return midnight.AddDate(0, 0, -diff)
}

// ParseWeekday maps a lowercase weekday name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	switch s {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Monday, fmt.Errorf("%w: unknown weekday %q", ErrInvalidTimeExpression, s)
}
