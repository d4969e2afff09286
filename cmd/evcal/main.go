package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"evcal/internal/config"
	appLog "evcal/internal/log"
	"evcal/internal/scheduler"
	"evcal/internal/shell"
	"evcal/internal/store"
	"evcal/internal/tui"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	ui         string
	logLevel   string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := applyFlags(conf, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(2)
	}

	ui := resolveInterface(conf.Interface)
	closeLog, err := setupLogging(conf, ui)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	defer closeLog()

	appLog.Info("evcal starting", "version", version)
	appLog.Info("effective config",
		"config_path", flags.configPath,
		"interface", ui,
		"archive_schedule", conf.ArchiveSchedule,
		"priorities", fmt.Sprint(conf.Priorities),
		"default_priority", conf.DefaultPriority,
		"force_updates", conf.ForceUpdates,
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, conf, ui, flags.once); err != nil {
		appLog.Error("evcal failed", err)
		closeLog()
		os.Exit(1)
	}
	appLog.Info("evcal exiting")
}

// run wires the store to the archive scheduler and the selected front end.
// The front end returning ends the session and stops the scheduler.
func run(ctx context.Context, conf *config.Config, ui string, once bool) error {
	st := store.New()
	sch, err := scheduler.New(conf.ArchiveSchedule, st)
	if err != nil {
		return err
	}
	sh := shell.New(st, shell.Options{
		Priorities:      conf.Priorities,
		DefaultPriority: conf.DefaultPriority,
		ForceUpdates:    conf.ForceUpdates,
	})

	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)
	defer stop()

	if once {
		sch.RunOnce()
	} else {
		g.Go(func() error { return sch.Run(gctx) })
	}

	g.Go(func() error {
		defer stop()
		if ui == config.InterfaceTUI {
			return tui.Run(gctx, st, sh)
		}
		return sh.Run(gctx, os.Stdin, os.Stdout)
	})

	return g.Wait()
}

// applyFlags overrides conf with explicit flag values. Unlike config file
// values, a bad flag is an error rather than a silent fallback.
func applyFlags(conf *config.Config, flags flagConfig) error {
	if flags.ui != "" {
		switch ui := strings.ToLower(flags.ui); ui {
		case config.InterfaceAuto, config.InterfaceShell, config.InterfaceTUI:
			conf.Interface = ui
		default:
			return fmt.Errorf("invalid -ui %q, expected auto, shell or tui", flags.ui)
		}
	}
	if flags.logLevel != "" {
		if _, err := appLog.ParseLevel(flags.logLevel); err != nil {
			return fmt.Errorf("invalid -log-level: %w", err)
		}
		conf.LogLevel = flags.logLevel
	}
	conf.Normalize()
	return nil
}

// resolveInterface turns "auto" into tui when both stdin and stdout are
// terminals, shell otherwise.
func resolveInterface(iface string) string {
	if iface != config.InterfaceAuto {
		return iface
	}
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return config.InterfaceTUI
	}
	return config.InterfaceShell
}

// setupLogging applies the level and routes output. The TUI owns the
// screen, so without a log file its logs are discarded.
func setupLogging(conf *config.Config, ui string) (func(), error) {
	lvl, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(lvl)

	if conf.LogFile == "" {
		if ui == config.InterfaceTUI {
			appLog.SetOutput(io.Discard)
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	appLog.SetOutput(f)
	return func() {
		appLog.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath(), "Path to config file")
	flag.StringVar(&cfg.ui, "ui", "", "Front end: auto, shell or tui (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "debug, info, warn or error (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Archive ended events once at startup instead of on the cron schedule")

	flag.Parse()

	return cfg
}
