package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	appLog "evcal/internal/log"
	"evcal/internal/model"
)

// Interface values select the front end.
const (
	InterfaceAuto  = "auto"
	InterfaceShell = "shell"
	InterfaceTUI   = "tui"
)

const defaultArchiveSchedule = "* * * * *"

// Config is the top-level application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile receives log output when set. The TUI discards logs otherwise.
	LogFile string `yaml:"log_file,omitempty"`

	// ArchiveSchedule is a standard 5-field cron spec for moving ended
	// events into history.
	ArchiveSchedule string `yaml:"archive_schedule"`

	// Interface is "auto" (TUI on a terminal, shell otherwise), "shell" or "tui".
	Interface string `yaml:"interface"`

	// Priorities is the closed set the front ends accept.
	Priorities []string `yaml:"priorities"`

	// DefaultPriority applies when an event is added without one.
	DefaultPriority string `yaml:"default_priority"`

	// ForceUpdates skips the overlap check on every update.
	ForceUpdates bool `yaml:"force_updates"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		ArchiveSchedule: defaultArchiveSchedule,
		Interface:       InterfaceAuto,
		Priorities:      append([]string(nil), model.DefaultPriorities...),
		DefaultPriority: model.PriorityMedium,
	}
}

// Normalize fills in missing or unusable values so older or hand-edited
// files still load.
func (c *Config) Normalize() {
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = "info"
	}
	if _, err := cron.ParseStandard(c.ArchiveSchedule); err != nil {
		if c.ArchiveSchedule != "" {
			appLog.Warn("invalid archive schedule, using default", "schedule", c.ArchiveSchedule)
		}
		c.ArchiveSchedule = defaultArchiveSchedule
	}
	switch strings.ToLower(c.Interface) {
	case InterfaceShell, InterfaceTUI, InterfaceAuto:
		c.Interface = strings.ToLower(c.Interface)
	default:
		c.Interface = InterfaceAuto
	}

	prios := make([]string, 0, len(c.Priorities))
	for _, p := range c.Priorities {
		if p = strings.TrimSpace(p); p != "" {
			prios = append(prios, p)
		}
	}
	if len(prios) == 0 {
		prios = append(prios, model.DefaultPriorities...)
	}
	c.Priorities = prios

	if p, err := model.NormalizePriority(c.DefaultPriority, c.Priorities); err == nil {
		c.DefaultPriority = p
	} else {
		c.DefaultPriority = c.Priorities[0]
	}
}

// DefaultPath is $XDG_CONFIG_HOME/evcal/config.yaml or the platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "evcal", "config.yaml")
}

// Load reads the YAML file at path. A missing file is created with the
// defaults (0600, parent 0700) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically: temp file in the same directory, chmod 0600,
// rename over path.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".evcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
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
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
