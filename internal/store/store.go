// Package store holds the in-memory calendar: active events, which never
// overlap, and history, which receives events once they have ended.
package store

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	appLog "evcal/internal/log"
	"evcal/internal/model"
)

var (
	ErrNotFound         = errors.New("no event found for the given date and time")
	ErrConflict         = errors.New("event overlaps an existing event")
	ErrUnknownAttribute = errors.New("invalid attribute")
	ErrInvalidDate      = model.ErrInvalidDate
)

// Store is safe for concurrent use; one lock guards both collections so
// archival never interleaves with an edit.
type Store struct {
	mu sync.RWMutex

	active  map[string]model.Event // by ID
	byStart []string               // active IDs, start ascending, ID for ties
	history map[string]model.Event // by ID

	now func() time.Time
}

type Option func(*Store)

// WithClock replaces the wall clock used by ArchivePastEvents.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		active:  make(map[string]model.Event),
		history: make(map[string]model.Event),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add inserts ev unless it overlaps an active event or reuses the ID of an
// active or archived event. On false nothing changed.
func (s *Store) Add(ev model.Event) bool {
	if !ev.IsValid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, inActive := s.active[ev.ID]
	_, inHistory := s.history[ev.ID]
	if inActive || inHistory {
		appLog.Debug("add rejected, duplicate id", "id", ev.ID, "archived", inHistory)
		return false
	}
	if other, ok := s.firstConflictLocked(ev); ok {
		appLog.Debug("add rejected, conflict", "event", ev.Line(), "existing", other.Line())
		return false
	}
	s.insertLocked(ev)
	appLog.Debug("event added", "event", ev.Line())
	return true
}

// Remove deletes the active event addressed by key (see model.Event.Key).
// History cannot be edited through this path.
func (s *Store) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.findLocked(key)
	if !ok {
		return false
	}
	s.deleteLocked(ev.ID)
	appLog.Debug("event removed", "event", ev.Line())
	return true
}

// FindByStartTime returns the active event starting at t (minute precision).
func (s *Store) FindByStartTime(t time.Time) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(model.FormatTimestamp(t))
}

// ArchivePastEvents moves every active event whose end is strictly before
// now into history and returns how many moved. Running it again with no
// new expired events moves nothing.
func (s *Store) ArchivePastEvents() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	kept := s.byStart[:0]
	for _, id := range s.byStart {
		ev := s.active[id]
		if !ev.End.Before(now) {
			kept = append(kept, id)
			continue
		}
		delete(s.active, id)
		s.history[id] = ev
		moved++
	}
	s.byStart = kept
	if moved > 0 {
		appLog.Debug("events archived", "count", moved)
	}
	return moved
}

// Active lists all active events, start ascending.
func (s *Store) Active() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

// History lists archived events, start ascending.
func (s *Store) History() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLocked()
}

func (s *Store) Len() (active, history int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active), len(s.history)
}

// Summarize lists active then archived events whose start day is on or
// after from and whose end day is on or before to, as a text block per
// event. An inverted range gives "".
func (s *Store) Summarize(from, to time.Time) string {
	from, to = model.DateOf(from), model.DateOf(to)
	if to.Before(from) {
		return ""
	}
	within := func(ev model.Event) bool {
		return !model.DateOf(ev.Start).Before(from) && !model.DateOf(ev.End).After(to)
	}

	// One read lock for both lists so an archival pass cannot move an
	// event between them mid-summary.
	s.mu.RLock()
	lists := [][]model.Event{s.activeLocked(), s.historyLocked()}
	s.mu.RUnlock()

	var b strings.Builder
	for _, list := range lists {
		for _, ev := range list {
			if within(ev) {
				b.WriteString(ev.String())
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

func (s *Store) activeLocked() []model.Event {
	out := make([]model.Event, 0, len(s.byStart))
	for _, id := range s.byStart {
		out = append(out, s.active[id])
	}
	return out
}

func (s *Store) historyLocked() []model.Event {
	out := make([]model.Event, 0, len(s.history))
	for _, ev := range s.history {
		out = append(out, ev)
	}
	slices.SortFunc(out, byStart)
	return out
}

// firstConflictLocked ignores an active event with ev's own ID.
func (s *Store) firstConflictLocked(ev model.Event) (model.Event, bool) {
	for _, id := range s.byStart {
		other := s.active[id]
		if other.ID == ev.ID {
			continue
		}
		if other.Overlaps(ev) {
			return other, true
		}
	}
	return model.Event{}, false
}

func (s *Store) findLocked(key string) (model.Event, bool) {
	start, err := model.ParseTimestamp(key)
	if err != nil {
		return model.Event{}, false
	}
	i, _ := slices.BinarySearchFunc(s.byStart, start, func(id string, t time.Time) int {
		return s.active[id].Start.Compare(t)
	})
	if i < len(s.byStart) {
		if ev := s.active[s.byStart[i]]; ev.Start.Equal(start) {
			return ev, true
		}
	}
	return model.Event{}, false
}

func (s *Store) insertLocked(ev model.Event) {
	s.active[ev.ID] = ev
	i, _ := slices.BinarySearchFunc(s.byStart, ev, func(id string, target model.Event) int {
		return byStart(s.active[id], target)
	})
	s.byStart = slices.Insert(s.byStart, i, ev.ID)
}

func (s *Store) deleteLocked(id string) {
	delete(s.active, id)
	s.byStart = slices.DeleteFunc(s.byStart, func(other string) bool { return other == id })
}

func byStart(a, b model.Event) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
