package ics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	appLog "evcal/internal/log"
	"evcal/internal/model"
)

// ReadFile loads the events of a local .ics file.
func ReadFile(path string) ([]model.Event, error) {
	if path == "" {
		return nil, errors.New("ics path is empty")
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	events, err := Parse(body)
	if err != nil {
		return nil, err
	}
	appLog.Info("ics import read", "path", path, "event_count", len(events))
	return events, nil
}

// WriteFile encodes events to path. The body is written to a temp file in
// the same directory first so a failed export never truncates an existing
// calendar.
func WriteFile(path string, events []model.Event) error {
	if path == "" {
		return errors.New("ics path is empty")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, events); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".evcal-export-*.ics")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	appLog.Info("ics export written", "path", path, "event_count", len(events))
	return nil
}
