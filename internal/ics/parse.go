package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "evcal/internal/log"
	"evcal/internal/model"
)

// PropertyPriority carries the free-text priority of an event. The numeric
// PRIORITY property is written alongside it for other calendar clients.
const PropertyPriority ical.ComponentProperty = "X-EVCAL-PRIORITY"

var ErrEmptyCalendar = errors.New("empty ICS body")

// Decode parses an iCalendar document into events.
//
//   - Times are converted to the local zone and truncated to the minute.
//   - Priority comes from X-EVCAL-PRIORITY, falling back to the numeric
//     PRIORITY property (1-4 High, 5 Medium, 6-9 Low).
//   - A VEVENT without a usable DTSTART/DTEND is logged and skipped.
//
// Recurrence rules are ignored; only the first occurrence is returned.
func Decode(r io.Reader) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	vevents := cal.Events()
	if len(vevents) == 0 {
		return nil, nil
	}

	events := make([]model.Event, 0, len(vevents))
	for _, comp := range vevents {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			appLog.Warn("skipping vevent", "uid", uidOf(comp), "err", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events), "skipped", len(vevents)-len(events))
	return events, nil
}

// Parse is Decode over an in-memory payload.
func Parse(body []byte) ([]model.Event, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyCalendar
	}
	return Decode(strings.NewReader(string(body)))
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var d model.Details

	d.ID = uidOf(ve)
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		d.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		d.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		d.Location = p.Value
	}
	d.Priority = priorityOf(ve)

	start, err := ve.GetStartAt()
	if err != nil {
		return model.Event{}, fmt.Errorf("dtstart: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional; an event without one is instantaneous.
		end = start
	}

	return model.NewEvent(d, start.In(time.Local), end.In(time.Local))
}

func uidOf(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func priorityOf(ve *ical.VEvent) string {
	if p := ve.GetProperty(PropertyPriority); p != nil && strings.TrimSpace(p.Value) != "" {
		return strings.TrimSpace(p.Value)
	}
	p := ve.GetProperty(ical.ComponentPropertyPriority)
	if p == nil {
		return ""
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Value))
	if err != nil {
		return ""
	}
	switch {
	case n >= 1 && n <= 4:
		return model.PriorityHigh
	case n == 5:
		return model.PriorityMedium
	case n >= 6 && n <= 9:
		return model.PriorityLow
	}
	return ""
}

// numericPriority maps the built-in levels onto RFC 5545 PRIORITY values.
// Other priorities get 0 (undefined).
func numericPriority(p string) int {
	switch {
	case strings.EqualFold(p, model.PriorityHigh):
		return 1
	case strings.EqualFold(p, model.PriorityMedium):
		return 5
	case strings.EqualFold(p, model.PriorityLow):
		return 9
	}
	return 0
}
