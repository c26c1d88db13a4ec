package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
)

const (
	icsMaxFileSize     = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout    = 30 * time.Second
	icsDefaultDuration = time.Hour
	icsProductID       = "-//The Samaritan Inn//Events//EN"
	icsUIDDomain       = "samaritan-inn"
)

var (
	ErrICSInvalidURL = errors.New("calendar url must be http, https or webcal")
	ErrICSFetch      = errors.New("could not fetch calendar")
	ErrICSMalformed  = errors.New("calendar file could not be parsed")
	ErrICSTooLarge   = errors.New("calendar file exceeds 5MB")
)

// FetchICSContent downloads a calendar from rawURL. webcal:// is fetched
// over https. The body is capped one byte past icsMaxFileSize so callers can
// detect oversize feeds.
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u := strings.TrimSpace(rawURL)
	if strings.HasPrefix(strings.ToLower(u), "webcal://") {
		u = "https://" + u[len("webcal://"):]
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrICSInvalidURL
	}

	ctx, cancel := context.WithTimeout(ctx, icsFetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		cancel()
		return nil, ErrICSInvalidURL
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrICSFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: HTTP %d", ErrICSFetch, resp.StatusCode)
	}

	return &fetchedBody{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize+1),
		body:   resp.Body,
		cancel: cancel,
	}, nil
}

type fetchedBody struct {
	io.Reader
	body   io.Closer
	cancel context.CancelFunc
}

func (b *fetchedBody) Close() error {
	defer b.cancel()
	return b.body.Close()
}

// readICS reads at most icsMaxFileSize bytes from r.
func readICS(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, icsMaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSFetch, err)
	}
	if len(data) > icsMaxFileSize {
		return "", ErrICSTooLarge
	}
	return string(data), nil
}

// ParseICSEvents turns every usable VEVENT into an Event in loc. A VEVENT
// needs a SUMMARY and a DTSTART; a missing DTEND means one hour. Unusable
// components are counted in skipped.
func ParseICSEvents(content string, loc *time.Location) (events []model.Event, skipped int, err error) {
	cal, err := ics.ParseCalendar(strings.NewReader(content))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSMalformed, err)
	}

	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			skipped++
			continue
		}
		events = append(events, evt)
	}
	return events, skipped, nil
}

func parseVEvent(comp *ics.VEvent, loc *time.Location) (model.Event, bool) {
	summary := comp.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.Event{}, false
	}

	start, err := parseICSDateTime(comp, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.Event{}, false
	}
	end, err := parseICSDateTime(comp, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		end = start.Add(icsDefaultDuration)
	}
	if end.Before(start) {
		return model.Event{}, false
	}

	content := ""
	if desc := comp.GetProperty(ics.ComponentPropertyDescription); desc != nil {
		content = strings.TrimSpace(unescapeICSText(desc.Value))
	}

	return model.Event{
		Title:   truncateRunes(strings.TrimSpace(unescapeICSText(summary.Value)), maxTitleLength),
		Content: content,
		StartAt: start,
		EndAt:   end,
	}, true
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// parseICSDateTime reads a DATE or DATE-TIME property. UTC values and values
// with a known TZID are converted into loc; floating values are taken as loc.
func parseICSDateTime(comp *ics.VEvent, prop ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	p := comp.GetProperty(prop)
	if p == nil {
		return time.Time{}, fmt.Errorf("missing property %s", prop)
	}
	val := strings.TrimSpace(p.Value)

	tzid := ""
	for k, v := range p.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", val)
}

var icsTextUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeICSText(s string) string {
	return icsTextUnescaper.Replace(s)
}

// BuildICSFeed renders events as a VCALENDAR document.
func BuildICSFeed(events []model.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName("The Samaritan Inn")

	for _, e := range events {
		ve := cal.AddEvent(e.EventID + "@" + icsUIDDomain)
		ve.SetDtStampTime(now)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(e.StartAt)
		ve.SetEndAt(e.EndAt)
		ve.SetSummary(e.Title)
		if e.Content != "" {
			ve.SetDescription(e.Content)
		}
	}

	return cal.Serialize()
}
