package model

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestNewEvent(t *testing.T) {
	t.Run("assigns an id and truncates to the minute", func(t *testing.T) {
		start := time.Date(2025, 1, 6, 9, 0, 42, 500, time.Local)
		ev, err := NewEvent(Details{Title: "Standup"}, start, start.Add(15*time.Minute))
		require.NoError(t, err)

		assert.NotEmpty(t, ev.ID)
		assert.True(t, ev.Start.Equal(at(2025, 1, 6, 9, 0)))
		assert.True(t, ev.End.Equal(at(2025, 1, 6, 9, 15)))
		assert.True(t, ev.IsValid())
	})

	t.Run("keeps a supplied id", func(t *testing.T) {
		ev, err := NewEvent(Details{ID: "fixed"}, at(2025, 1, 6, 9, 0), at(2025, 1, 6, 9, 0))
		require.NoError(t, err)
		assert.Equal(t, "fixed", ev.ID)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		ev, err := NewEvent(Details{Title: "Backwards"}, at(2025, 1, 6, 10, 0), at(2025, 1, 6, 9, 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTimeRange))
		assert.False(t, ev.IsValid())
	})
}

func TestWithTimes(t *testing.T) {
	ev, err := NewEvent(Details{ID: "a", Title: "Review"}, at(2025, 3, 1, 14, 0), at(2025, 3, 1, 15, 0))
	require.NoError(t, err)

	moved, err := ev.WithTimes(at(2025, 3, 2, 14, 0), at(2025, 3, 2, 16, 0))
	require.NoError(t, err)
	assert.Equal(t, "a", moved.ID)
	assert.Equal(t, "Review", moved.Title)
	assert.True(t, moved.Equal(ev))

	_, err = ev.WithTimes(at(2025, 3, 2, 16, 0), at(2025, 3, 2, 14, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestOverlaps(t *testing.T) {
	base := mustEvent(t, at(2025, 1, 6, 9, 0), at(2025, 1, 6, 10, 0))
	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"disjoint before", at(2025, 1, 6, 7, 0), at(2025, 1, 6, 8, 59), false},
		{"disjoint after", at(2025, 1, 6, 10, 1), at(2025, 1, 6, 11, 0), false},
		{"starts during", at(2025, 1, 6, 9, 30), at(2025, 1, 6, 11, 0), true},
		{"ends during", at(2025, 1, 6, 8, 0), at(2025, 1, 6, 9, 30), true},
		{"contained", at(2025, 1, 6, 9, 10), at(2025, 1, 6, 9, 20), true},
		{"containing", at(2025, 1, 6, 8, 0), at(2025, 1, 6, 11, 0), true},
		{"starts flush with end", at(2025, 1, 6, 10, 0), at(2025, 1, 6, 11, 0), true},
		{"ends flush with start", at(2025, 1, 6, 8, 0), at(2025, 1, 6, 9, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustEvent(t, tc.start, tc.end)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestEqualIsByID(t *testing.T) {
	a, err := NewEvent(Details{ID: "same", Title: "One"}, at(2025, 1, 1, 8, 0), at(2025, 1, 1, 9, 0))
	require.NoError(t, err)
	b, err := NewEvent(Details{ID: "same", Title: "Two"}, at(2025, 2, 1, 8, 0), at(2025, 2, 1, 9, 0))
	require.NoError(t, err)
	c := mustEvent(t, a.Start, a.End)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestString(t *testing.T) {
	ev, err := NewEvent(Details{ID: "42", Title: "Dentist", Location: "Main St", Description: "Checkup", Priority: PriorityHigh},
		at(2025, 7, 4, 15, 30), at(2025, 7, 4, 16, 0))
	require.NoError(t, err)

	want := "Event Title: Dentist\nStart Time: 07/04/2025 3:30 PM\nEnd Time: 07/04/2025 4:00 PM\n" +
		"Location: Main St\nID: 42\nDescription: Checkup\nPriority: High\n"
	assert.Equal(t, want, ev.String())
	assert.Equal(t, "07/04/2025 3:30 PM", ev.Key())
}

func mustEvent(t *testing.T, start, end time.Time) Event {
	t.Helper()
	ev, err := NewEvent(Details{Title: "test"}, start, end)
	require.NoError(t, err)
	return ev
}

// inZone switches time.Local for the rest of the test.
func inZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
	return loc
}

func TestNewEventAcrossFallBack(t *testing.T) {
	ny := inZone(t, "America/New_York")

	// 01:50:30 EDT and 01:10 EST on 11/02/2025, twenty minutes apart.
	start := time.Date(2025, 11, 2, 5, 50, 30, 0, time.UTC).In(ny)
	end := time.Date(2025, 11, 2, 6, 10, 0, 0, time.UTC).In(ny)

	ev, err := NewEvent(Details{Title: "Night shift"}, start, end)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, ev.End.Sub(ev.Start))
	assert.True(t, ev.Start.Equal(time.Date(2025, 11, 2, 5, 50, 0, 0, time.UTC)))
	assert.Equal(t, ny, ev.Start.Location())
}

func TestLine(t *testing.T) {
	ev := mustEvent(t, at(2025, 1, 6, 9, 0), at(2025, 1, 6, 9, 15))
	ev.Title, ev.Priority = "Standup", PriorityHigh
	assert.Equal(t, "<01/06/2025 9:00 AM - 01/06/2025 9:15 AM> [High] Standup", ev.Line())

	ev.Priority = ""
	assert.Equal(t, "<01/06/2025 9:00 AM - 01/06/2025 9:15 AM> Standup", ev.Line())
}
