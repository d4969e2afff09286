package ics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evcal/internal/model"
)

func calendar(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func utc(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func TestParseEvents(t *testing.T) {
	body := calendar(
		"BEGIN:VEVENT",
		"UID:standup-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250106T090000Z",
		"DTEND:20250106T091500Z",
		"SUMMARY:Standup",
		"LOCATION:Room 1",
		"DESCRIPTION:Daily sync",
		"PRIORITY:1",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:retro-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250110T150000Z",
		"DTEND:20250110T160000Z",
		"SUMMARY:Retro",
		"X-EVCAL-PRIORITY:Someday",
		"PRIORITY:1",
		"END:VEVENT",
	)

	events, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, events, 2)

	standup := events[0]
	assert.Equal(t, "standup-1", standup.ID)
	assert.Equal(t, "Standup", standup.Title)
	assert.Equal(t, "Room 1", standup.Location)
	assert.Equal(t, "Daily sync", standup.Description)
	assert.Equal(t, model.PriorityHigh, standup.Priority)
	assert.True(t, standup.Start.Equal(utc(2025, 1, 6, 9, 0)))
	assert.True(t, standup.End.Equal(utc(2025, 1, 6, 9, 15)))
	assert.Equal(t, time.Local, standup.Start.Location())

	assert.Equal(t, "Someday", events[1].Priority, "custom priority wins over PRIORITY")
}

func TestParseSkipsBrokenEvents(t *testing.T) {
	body := calendar(
		"BEGIN:VEVENT",
		"UID:inverted",
		"DTSTART:20250106T100000Z",
		"DTEND:20250106T090000Z",
		"SUMMARY:Backwards",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:nostart",
		"SUMMARY:Floating",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok",
		"DTSTART:20250106T110000Z",
		"DTEND:20250106T120000Z",
		"SUMMARY:Fine",
		"END:VEVENT",
	)

	events, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].ID)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyCalendar)

	events, err := Parse(calendar())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPriorityMapping(t *testing.T) {
	for _, tc := range []struct {
		numeric string
		want    string
	}{
		{"1", model.PriorityHigh},
		{"4", model.PriorityHigh},
		{"5", model.PriorityMedium},
		{"9", model.PriorityLow},
		{"0", ""},
		{"x", ""},
	} {
		t.Run(tc.numeric, func(t *testing.T) {
			body := calendar(
				"BEGIN:VEVENT",
				"UID:p",
				"DTSTART:20250106T110000Z",
				"DTEND:20250106T120000Z",
				"PRIORITY:"+tc.numeric,
				"END:VEVENT",
			)
			events, err := Parse(body)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tc.want, events[0].Priority)
		})
	}
}

func sampleEvents(t *testing.T) []model.Event {
	t.Helper()
	a, err := model.NewEvent(model.Details{
		Title: "Planning", Location: "HQ", Description: "Quarterly plan", Priority: model.PriorityLow,
	}, time.Date(2025, 2, 3, 10, 0, 0, 0, time.Local), time.Date(2025, 2, 3, 11, 30, 0, 0, time.Local))
	require.NoError(t, err)
	b, err := model.NewEvent(model.Details{Title: "Lunch", Priority: "Whenever"},
		time.Date(2025, 2, 3, 12, 0, 0, 0, time.Local), time.Date(2025, 2, 3, 13, 0, 0, 0, time.Local))
	require.NoError(t, err)
	return []model.Event{a, b}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleEvents(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	assert.Contains(t, buf.String(), "PRIORITY:9")

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Title, out[i].Title)
		assert.Equal(t, in[i].Location, out[i].Location)
		assert.Equal(t, in[i].Description, out[i].Description)
		assert.Equal(t, in[i].Priority, out[i].Priority)
		assert.True(t, in[i].Start.Equal(out[i].Start))
		assert.True(t, in[i].End.Equal(out[i].End))
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cal.ics")
	in := sampleEvents(t)

	require.NoError(t, WriteFile(path, in))
	_, err := os.Stat(path)
	require.NoError(t, err)

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.ics"))
	assert.Error(t, err)
	assert.Error(t, WriteFile("", in))
}
