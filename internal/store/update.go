package store

import (
	"fmt"
	"time"

	appLog "evcal/internal/log"
	"evcal/internal/model"
)

// Edit lists the changes to apply; nil fields keep the current value.
type Edit struct {
	Title       *string
	Location    *string
	Description *string
	Priority    *string
	Start       *time.Time
	End         *time.Time
}

type UpdateOptions struct {
	// Force skips the overlap check against other active events.
	Force bool
}

// UpdateResult describes what Update actually applied.
type UpdateResult struct {
	Event  model.Event
	OldKey string
	// EndKept is set when the requested end preceded the start and the
	// previous end was kept. StartKept is set when even the previous end
	// preceded the requested start, so the start change was dropped too.
	EndKept   bool
	StartKept bool
}

// Update replaces the active event at key. Text fields always apply; a
// time change that would invert the window is partially dropped (see
// UpdateResult). Unless opts.Force is set, the new window must not overlap
// another active event, otherwise ErrConflict is returned and nothing
// changes.
func (s *Store) Update(key string, edit Edit, opts UpdateOptions) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.findLocked(key)
	if !ok {
		return UpdateResult{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	res := UpdateResult{OldKey: cur.Key()}

	d := cur.Details()
	apply(&d.Title, edit.Title)
	apply(&d.Location, edit.Location)
	apply(&d.Description, edit.Description)
	apply(&d.Priority, edit.Priority)

	start, end := cur.Start, cur.End
	if edit.Start != nil {
		start = *edit.Start
	}
	if edit.End != nil {
		end = *edit.End
	}
	if end.Before(start) {
		end = cur.End
		res.EndKept = edit.End != nil
		if end.Before(start) {
			start = cur.Start
			res.StartKept = true
		}
	}

	next, err := model.NewEvent(d, start, end)
	if err != nil {
		// unreachable: the window was repaired above
		return UpdateResult{}, err
	}
	if !opts.Force {
		if other, clash := s.firstConflictLocked(next); clash {
			return UpdateResult{}, fmt.Errorf("%w: %s", ErrConflict, other.Line())
		}
	}

	s.deleteLocked(cur.ID)
	s.insertLocked(next)
	res.Event = next
	appLog.Debug("event updated", "old_key", res.OldKey, "event", next.Line(), "forced", opts.Force)
	return res, nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
