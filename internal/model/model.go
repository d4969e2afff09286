package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTimeRange is returned when an event would end before it starts.
var ErrInvalidTimeRange = errors.New("end time cannot be before start time")

// Event is a single time-bounded calendar entry.
//
// Values are immutable once built by NewEvent; changing the window goes
// through WithTimes, which re-validates. Identity is the ID alone.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Details carries the free-text fields of an event.
type Details struct {
	ID          string
	Title       string
	Location    string
	Description string
	Priority    string
}

// NewEvent builds a validated Event. Start and end are truncated to the
// minute. An empty Details.ID gets a fresh UUID.
func NewEvent(d Details, start, end time.Time) (Event, error) {
	start, end = TruncateMinute(start), TruncateMinute(end)
	if end.Before(start) {
		return Event{}, fmt.Errorf("%w: %s > %s", ErrInvalidTimeRange, FormatTimestamp(start), FormatTimestamp(end))
	}
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Event{
		ID:          id,
		Title:       d.Title,
		Location:    d.Location,
		Description: d.Description,
		Priority:    d.Priority,
		Start:       start,
		End:         end,
	}, nil
}

// Details returns the free-text fields, including the ID.
func (e Event) Details() Details {
	return Details{
		ID:          e.ID,
		Title:       e.Title,
		Location:    e.Location,
		Description: e.Description,
		Priority:    e.Priority,
	}
}

// WithTimes returns a copy of e with a new window.
func (e Event) WithTimes(start, end time.Time) (Event, error) {
	return NewEvent(e.Details(), start, end)
}

// Key is the canonical start timestamp text used to address active events.
func (e Event) Key() string {
	return FormatTimestamp(e.Start)
}

// Equal reports identity; two events are the same event iff their IDs match.
func (e Event) Equal(other Event) bool {
	return e.ID == other.ID
}

// Overlaps uses closed intervals: an event ending exactly when the other
// starts still overlaps it.
func (e Event) Overlaps(other Event) bool {
	return timeRangesOverlap(e.Start, e.End, other.Start, other.End)
}

// IsValid reports whether e was produced by NewEvent.
func (e Event) IsValid() bool {
	return e.ID != "" && !e.Start.IsZero() && !e.End.Before(e.Start)
}

func (e Event) String() string {
	return fmt.Sprintf("Event Title: %s\nStart Time: %s\nEnd Time: %s\nLocation: %s\nID: %s\nDescription: %s\nPriority: %s\n",
		e.Title, FormatTimestamp(e.Start), FormatTimestamp(e.End), e.Location, e.ID, e.Description, e.Priority)
}

// Line is the compact one-line form used in logs and listings.
func (e Event) Line() string {
	pri := ""
	if e.Priority != "" {
		pri = " [" + e.Priority + "]"
	}
	return fmt.Sprintf("<%s - %s>%s %s", FormatTimestamp(e.Start), FormatTimestamp(e.End), pri, e.Title)
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if aStart.After(bEnd) {
		return false
	}
	return true
}
