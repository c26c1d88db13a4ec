package service

import (
	"errors"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	clockSecLayout  = "15:04:05"
	timestampLayout = "2006-01-02T15:04:05Z07:00"
)

var errBadDateTime = errors.New("malformed date or time")

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errBadDateTime
	}
	return t, nil
}

// parseClock extracts a time of day from "HH:MM", "HH:MM:SS", a local
// datetime "YYYY-MM-DDTHH:MM[:SS]" or an RFC 3339 timestamp. Timestamps
// carrying an offset are converted into loc first.
func parseClock(s string, loc *time.Location) (hour, minute, sec int, err error) {
	s = strings.TrimSpace(s)

	for _, layout := range []string{clockLayout, clockSecLayout} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, perr := time.ParseInLocation(layout, s, loc); perr == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	if t, perr := time.Parse(time.RFC3339, s); perr == nil {
		t = t.In(loc)
		return t.Hour(), t.Minute(), t.Second(), nil
	}
	return 0, 0, 0, errBadDateTime
}

// combineDateTime joins a date and a time of day in loc.
func combineDateTime(date time.Time, hour, minute, sec int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, 0, loc)
}

// formatDate renders t as YYYY-MM-DD in loc.
func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// formatClock renders the time of day in loc, with seconds only when set.
func formatClock(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	if t.Second() != 0 {
		return t.Format(clockSecLayout)
	}
	return t.Format(clockLayout)
}

// formatTimestamp renders t as RFC 3339 in UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// dateTimeWindow validates and combines the four date/time fields shared by
// curfew requests and events. Field names are reported through fc.
func dateTimeWindow(fc *fieldChecker, loc *time.Location, startDate, startTime, endDate, endTime string) (start, end time.Time) {
	sd, sdErr := parseDate(startDate)
	if sdErr != nil {
		fc.add("startDate")
	}
	ed, edErr := parseDate(endDate)
	if edErr != nil {
		fc.add("endDate")
	}
	sh, sm, ss, stErr := parseClock(startTime, loc)
	if stErr != nil {
		fc.add("startTime")
	}
	eh, em, es, etErr := parseClock(endTime, loc)
	if etErr != nil {
		fc.add("endTime")
	}
	if sdErr != nil || edErr != nil || stErr != nil || etErr != nil {
		return time.Time{}, time.Time{}
	}

	return combineDateTime(sd, sh, sm, ss, loc), combineDateTime(ed, eh, em, es, loc)
}
