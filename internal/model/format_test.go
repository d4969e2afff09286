package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	for _, ts := range []time.Time{
		at(2025, 1, 6, 0, 5),
		at(2025, 1, 6, 9, 0),
		at(2025, 12, 31, 12, 0),
		at(2025, 12, 31, 23, 59),
	} {
		s := FormatTimestamp(ts)
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(ts), s)
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("  07/04/2025   3:30 pm ")
	require.NoError(t, err)
	assert.True(t, got.Equal(at(2025, 7, 4, 15, 30)))

	for _, bad := range []string{"", "07/04/2025", "2025-07-04 15:30", "07/04/2025 15:30", "13/01/2025 1:00 AM"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, bad)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("07/04/2025")
	require.NoError(t, err)
	assert.True(t, got.Equal(at(2025, 7, 4, 0, 0)))
	assert.Equal(t, "07/04/2025", FormatDate(got))

	_, err = ParseDate("7-4-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(at(2025, 7, 4, 0, 0), at(2025, 7, 4, 23, 59)))
	assert.False(t, SameDay(at(2025, 7, 4, 23, 59), at(2025, 7, 5, 0, 0)))
}

func TestNormalizePriority(t *testing.T) {
	got, err := NormalizePriority(" medium ", DefaultPriorities)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, got)

	_, err = NormalizePriority("urgent", DefaultPriorities)
	assert.Error(t, err)
}

func TestFallBackHourSharesKey(t *testing.T) {
	inZone(t, "America/New_York")

	edt := time.Date(2025, 11, 2, 5, 30, 0, 0, time.UTC)
	est := time.Date(2025, 11, 2, 6, 30, 0, 0, time.UTC)
	require.Equal(t, "11/02/2025 1:30 AM", FormatTimestamp(edt))
	require.Equal(t, FormatTimestamp(edt), FormatTimestamp(est))

	parsed, err := ParseTimestamp("11/02/2025 1:30 AM")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(edt) || parsed.Equal(est), "resolves to one of the two instants")
}
