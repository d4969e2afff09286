package store

import (
	"fmt"
	"slices"
	"strings"

	"evcal/internal/model"
)

type Attribute string

const (
	AttrTitle       Attribute = "title"
	AttrLocation    Attribute = "location"
	AttrPriority    Attribute = "priority"
	AttrDescription Attribute = "description"
	AttrDate        Attribute = "date"
)

// FilterAttributes are accepted by View, SortAttributes by Sort.
var (
	FilterAttributes = []Attribute{AttrTitle, AttrLocation, AttrPriority, AttrDescription, AttrDate}
	SortAttributes   = []Attribute{AttrDate, AttrTitle, AttrPriority}
)

func ParseAttribute(s string, valid []Attribute) (Attribute, error) {
	a := Attribute(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(valid, a) {
		return "", fmt.Errorf("%w %q", ErrUnknownAttribute, s)
	}
	return a, nil
}

// View filters active events, start ascending. Text attributes match by
// case-insensitive substring; date matches the start day exactly
// (MM/DD/YYYY). An unknown attribute or a malformed date yields no events
// and an error describing the input problem.
func (s *Store) View(attribute, value string) ([]model.Event, error) {
	attr, err := ParseAttribute(attribute, FilterAttributes)
	if err != nil {
		return []model.Event{}, err
	}

	var match func(model.Event) bool
	if attr == AttrDate {
		day, err := model.ParseDate(value)
		if err != nil {
			return []model.Event{}, err
		}
		match = func(ev model.Event) bool { return model.SameDay(ev.Start, day) }
	} else {
		needle := strings.ToLower(value)
		match = func(ev model.Event) bool {
			return strings.Contains(strings.ToLower(textOf(ev, attr)), needle)
		}
	}

	out := make([]model.Event, 0)
	for _, ev := range s.Active() {
		if match(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Sort returns all active events ordered by date, title or priority.
// Titles and priorities compare as plain strings; equal keys keep start
// order, so the result is the same on every call. For an unknown
// attribute the start-ordered list comes back with ErrUnknownAttribute.
func (s *Store) Sort(attribute string) ([]model.Event, error) {
	events := s.Active()
	attr, err := ParseAttribute(attribute, SortAttributes)
	if err != nil {
		return events, err
	}
	if attr == AttrDate {
		return events, nil
	}
	slices.SortStableFunc(events, func(a, b model.Event) int {
		return strings.Compare(textOf(a, attr), textOf(b, attr))
	})
	return events, nil
}

func textOf(ev model.Event, attr Attribute) string {
	switch attr {
	case AttrTitle:
		return ev.Title
	case AttrLocation:
		return ev.Location
	case AttrPriority:
		return ev.Priority
	case AttrDescription:
		return ev.Description
	}
	return ""
}
