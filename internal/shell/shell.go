package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
	"github.com/urfave/cli"

	appLog "evcal/internal/log"
	"evcal/internal/model"
	"evcal/internal/store"
)

const defaultPrompt = "evcal> "

// Options carries the adapter-level policy that the store itself does not
// enforce.
type Options struct {
	// Priorities is the closed set accepted by add, update and import.
	Priorities []string
	// DefaultPriority is used when add or import supplies none.
	DefaultPriority string
	// ForceUpdates makes every update behave as if --force was given.
	ForceUpdates bool
	Prompt       string
}

// Shell translates command lines into store calls. Exec is serialized, so a
// Shell can be shared between the line REPL and the TUI.
type Shell struct {
	store *store.Store
	opts  Options
	app   *cli.App

	mu   sync.Mutex
	w    io.Writer
	quit bool
}

func New(st *store.Store, opts Options) *Shell {
	if len(opts.Priorities) == 0 {
		opts.Priorities = append([]string(nil), model.DefaultPriorities...)
	}
	if p, err := model.NormalizePriority(opts.DefaultPriority, opts.Priorities); err == nil {
		opts.DefaultPriority = p
	} else {
		opts.DefaultPriority = opts.Priorities[0]
	}
	if opts.Prompt == "" {
		opts.Prompt = defaultPrompt
	}

	s := &Shell{store: st, opts: opts, w: io.Discard}
	s.app = s.newApp()
	return s
}

func (s *Shell) newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "evcal"
	app.Usage = "personal event calendar"
	app.HideVersion = true
	app.Commands = s.commands()
	app.Action = func(c *cli.Context) error {
		return fmt.Errorf("unknown command %q, try \"help\"", c.Args().First())
	}
	app.CommandNotFound = func(c *cli.Context, name string) {
		fmt.Fprintf(c.App.Writer, "No help topic for %q.\n", name)
	}
	return app
}

// CommandNames lists the verbs the shell understands.
func (s *Shell) CommandNames() []string {
	names := make([]string, 0, len(s.app.Commands)+1)
	for _, c := range s.app.Commands {
		names = append(names, c.Name)
		names = append(names, c.Aliases...)
	}
	return append(names, "help")
}

// Exec runs one command line, writing every message to out. It reports
// whether the line asked to leave the session. A malformed line produces a
// message and never changes the store.
func (s *Shell) Exec(line string, out io.Writer) (quit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	words, err := shellwords.Parse(line)
	if err != nil {
		fmt.Fprintf(out, "Could not read command: %v\n", err)
		return false
	}
	if len(words) == 0 {
		return false
	}
	words[0] = strings.ToLower(words[0])
	if !slices.Contains(s.CommandNames(), words[0]) {
		fmt.Fprintf(out, "Unknown command %q. Type \"help\" for the command list.\n", words[0])
		return false
	}

	s.w, s.quit = out, false
	s.app.Writer, s.app.ErrWriter = out, out
	defer func() { s.w = io.Discard }()

	if err := s.app.Run(append([]string{s.app.Name}, words...)); err != nil {
		appLog.Debug("command failed", "command", words[0], "err", err.Error())
		fmt.Fprintf(out, "%s\n", userMessage(err))
	}
	return s.quit
}

// Run reads commands from in until EOF, "quit" or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	fmt.Fprintf(out, "Type \"help\" for the command list.\n")
	for {
		fmt.Fprint(out, s.opts.Prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if s.Exec(line, out) {
				fmt.Fprintln(out, "Goodbye.")
				return nil
			}
		}
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.w, format, args...)
}

// userMessage renders an error as a sentence for the session.
func userMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Error."
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
