package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"

	"evcal/internal/ics"
	appLog "evcal/internal/log"
	"evcal/internal/model"
	"evcal/internal/store"
)

var jsonFlag = cli.BoolFlag{Name: "json", Usage: "print events as JSON"}

func (s *Shell) commands() []cli.Command {
	return []cli.Command{
		{
			Name:      "add",
			Usage:     "add an event",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "title, t", Usage: "event title"},
				cli.StringFlag{Name: "start, s", Usage: "start time, " + timestampHint},
				cli.StringFlag{Name: "end, e", Usage: "end time, " + timestampHint},
				cli.StringFlag{Name: "location, l", Usage: "where"},
				cli.StringFlag{Name: "description, d", Usage: "free text"},
				cli.StringFlag{Name: "priority, p", Usage: "one of " + strings.Join(s.opts.Priorities, ", ")},
			},
			Action:       s.add,
			OnUsageError: usageError,
		},
		{
			Name:         "remove",
			Aliases:      []string{"rm"},
			Usage:        "remove the active event starting at the given time",
			ArgsUsage:    "<" + timestampHint + ">",
			Action:       s.remove,
			OnUsageError: usageError,
		},
		{
			Name:      "update",
			Usage:     "change fields of the active event starting at the given time",
			ArgsUsage: "<" + timestampHint + ">",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "title, t"},
				cli.StringFlag{Name: "location, l"},
				cli.StringFlag{Name: "description, d"},
				cli.StringFlag{Name: "priority, p"},
				cli.StringFlag{Name: "start, s", Usage: "new start time"},
				cli.StringFlag{Name: "end, e", Usage: "new end time"},
				cli.BoolFlag{Name: "force, f", Usage: "allow the new window to overlap other events"},
			},
			Action:       s.update,
			OnUsageError: usageError,
		},
		{
			Name:         "view",
			Usage:        "filter active events by title, location, priority, description or date",
			ArgsUsage:    "<attribute> <value>",
			Flags:        []cli.Flag{jsonFlag},
			Action:       s.view,
			OnUsageError: usageError,
		},
		{
			Name:         "sort",
			Usage:        "list active events sorted by date, title or priority",
			ArgsUsage:    "<attribute>",
			Flags:        []cli.Flag{jsonFlag},
			Action:       s.sort,
			OnUsageError: usageError,
		},
		{
			Name:         "list",
			Aliases:      []string{"ls"},
			Usage:        "list active events",
			Flags:        []cli.Flag{jsonFlag},
			Action:       s.list,
			OnUsageError: usageError,
		},
		{
			Name:         "find",
			Usage:        "show the active event starting at the given time",
			ArgsUsage:    "<" + timestampHint + ">",
			Action:       s.find,
			OnUsageError: usageError,
		},
		{
			Name:   "refresh",
			Usage:  "move events that have ended into history",
			Action: s.refresh,
		},
		{
			Name:         "history",
			Usage:        "list archived events",
			Flags:        []cli.Flag{jsonFlag},
			Action:       s.history,
			OnUsageError: usageError,
		},
		{
			Name:         "summary",
			Usage:        "print active and archived events within a date range",
			ArgsUsage:    "<from MM/DD/YYYY> <to MM/DD/YYYY>",
			Action:       s.summary,
			OnUsageError: usageError,
		},
		{
			Name:      "export",
			Usage:     "write active and archived events to an .ics file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "from", Usage: "first day, MM/DD/YYYY"},
				cli.StringFlag{Name: "to", Usage: "last day, MM/DD/YYYY"},
			},
			Action:       s.export,
			OnUsageError: usageError,
		},
		{
			Name:         "import",
			Usage:        "add the events of an .ics file, skipping conflicts",
			ArgsUsage:    "<file>",
			Action:       s.importFile,
			OnUsageError: usageError,
		},
		{
			Name:    "quit",
			Aliases: []string{"exit"},
			Usage:   "leave the session",
			Action: func(*cli.Context) error {
				s.quit = true
				return nil
			},
		},
	}
}

const timestampHint = "MM/DD/YYYY h:mm AM/PM"

// usageError keeps cli from printing the whole help page on a bad flag.
func usageError(_ *cli.Context, err error, _ bool) error {
	return fmt.Errorf("incorrect usage: %w", err)
}

// joinedArgs treats every positional argument as one value so unquoted
// timestamps such as 01/06/2025 9:00 AM still work.
func joinedArgs(c *cli.Context) string {
	return strings.Join(c.Args(), " ")
}

func (s *Shell) priority(v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return s.opts.DefaultPriority, nil
	}
	return model.NormalizePriority(v, s.opts.Priorities)
}

func (s *Shell) add(c *cli.Context) error {
	title := strings.TrimSpace(c.String("title"))
	if title == "" {
		return errors.New("a title is required (--title)")
	}
	start, err := model.ParseTimestamp(c.String("start"))
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := model.ParseTimestamp(c.String("end"))
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	pri, err := s.priority(c.String("priority"))
	if err != nil {
		return err
	}

	ev, err := model.NewEvent(model.Details{
		Title:       title,
		Location:    c.String("location"),
		Description: c.String("description"),
		Priority:    pri,
	}, start, end)
	if err != nil {
		return err
	}
	if !s.store.Add(ev) {
		s.printf("Event not added: it overlaps an existing event.\n")
		return nil
	}
	s.printf("Event added: %s\n", ev.Line())
	return nil
}

func (s *Shell) remove(c *cli.Context) error {
	key := joinedArgs(c)
	if key == "" {
		return errors.New("usage: remove <" + timestampHint + ">")
	}
	if !s.store.Remove(key) {
		s.printf("No active event starts at %s.\n", key)
		return nil
	}
	s.printf("Event removed.\n")
	return nil
}

func (s *Shell) update(c *cli.Context) error {
	key := joinedArgs(c)
	if key == "" {
		return errors.New("usage: update <" + timestampHint + "> [flags]")
	}

	var edit store.Edit
	for name, dst := range map[string]**string{
		"title":       &edit.Title,
		"location":    &edit.Location,
		"description": &edit.Description,
	} {
		if c.IsSet(name) {
			v := c.String(name)
			*dst = &v
		}
	}
	if c.IsSet("priority") {
		p, err := model.NormalizePriority(c.String("priority"), s.opts.Priorities)
		if err != nil {
			return err
		}
		edit.Priority = &p
	}
	for name, dst := range map[string]**time.Time{"start": &edit.Start, "end": &edit.End} {
		if !c.IsSet(name) {
			continue
		}
		t, err := model.ParseTimestamp(c.String(name))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = &t
	}

	res, err := s.store.Update(key, edit, store.UpdateOptions{Force: c.Bool("force") || s.opts.ForceUpdates})
	if err != nil {
		return err
	}
	if res.EndKept {
		s.printf("End time before start time: end time not changed.\n")
	}
	if res.StartKept {
		s.printf("Start time after end time: start time not changed.\n")
	}
	s.printf("Event updated: %s\n", res.Event.Line())
	return nil
}

func (s *Shell) view(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: view <attribute> <value>")
	}
	events, err := s.store.View(c.Args().First(), strings.Join(c.Args().Tail(), " "))
	if err != nil {
		return err
	}
	return s.printEvents(c, events, "No matching events.")
}

func (s *Shell) sort(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: sort <date|title|priority>")
	}
	events, err := s.store.Sort(c.Args().First())
	if err != nil {
		return err
	}
	return s.printEvents(c, events, "No events.")
}

func (s *Shell) list(c *cli.Context) error {
	return s.printEvents(c, s.store.Active(), "No events.")
}

func (s *Shell) history(c *cli.Context) error {
	return s.printEvents(c, s.store.History(), "History is empty.")
}

func (s *Shell) find(c *cli.Context) error {
	t, err := model.ParseTimestamp(joinedArgs(c))
	if err != nil {
		return err
	}
	ev, ok := s.store.FindByStartTime(t)
	if !ok {
		s.printf("No active event starts at %s.\n", model.FormatTimestamp(t))
		return nil
	}
	s.printf("%s", ev.String())
	return nil
}

func (s *Shell) refresh(*cli.Context) error {
	n := s.store.ArchivePastEvents()
	s.printf("Archived %d event(s).\n", n)
	return nil
}

func (s *Shell) summary(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: summary <from MM/DD/YYYY> <to MM/DD/YYYY>")
	}
	from, err := model.ParseDate(c.Args().Get(0))
	if err != nil {
		return err
	}
	to, err := model.ParseDate(c.Args().Get(1))
	if err != nil {
		return err
	}
	text := s.store.Summarize(from, to)
	if text == "" {
		s.printf("No events between %s and %s.\n", model.FormatDate(from), model.FormatDate(to))
		return nil
	}
	s.printf("%s", text)
	return nil
}

func (s *Shell) export(c *cli.Context) error {
	path := joinedArgs(c)
	if path == "" {
		return errors.New("usage: export <file> [--from MM/DD/YYYY] [--to MM/DD/YYYY]")
	}

	var from, to time.Time
	var err error
	if v := c.String("from"); v != "" {
		if from, err = model.ParseDate(v); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if v := c.String("to"); v != "" {
		if to, err = model.ParseDate(v); err != nil {
			return fmt.Errorf("to: %w", err)
		}
	}

	events := make([]model.Event, 0)
	for _, ev := range append(s.store.Active(), s.store.History()...) {
		day := model.DateOf(ev.Start)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		events = append(events, ev)
	}

	if err := ics.WriteFile(path, events); err != nil {
		return err
	}
	s.printf("Exported %d event(s) to %s.\n", len(events), path)
	return nil
}

func (s *Shell) importFile(c *cli.Context) error {
	path := joinedArgs(c)
	if path == "" {
		return errors.New("usage: import <file>")
	}
	events, err := ics.ReadFile(path)
	if err != nil {
		return err
	}

	added, skipped := 0, 0
	for _, ev := range events {
		pri, err := s.priority(ev.Priority)
		if err != nil {
			appLog.Warn("import: unknown priority, using default", "id", ev.ID, "priority", ev.Priority)
			pri = s.opts.DefaultPriority
		}
		ev.Priority = pri
		if !s.store.Add(ev) {
			skipped++
			s.printf("Skipped %s: overlaps an existing event or is already present.\n", ev.Line())
			continue
		}
		added++
	}
	s.printf("Imported %d event(s), skipped %d.\n", added, skipped)
	return nil
}

func (s *Shell) printEvents(c *cli.Context, events []model.Event, empty string) error {
	if c.Bool("json") {
		data, err := jsoniter.ConfigFastest.MarshalIndent(events, "", "  ")
		if err != nil {
			return err
		}
		s.printf("%s\n", data)
		return nil
	}
	if len(events) == 0 {
		s.printf("%s\n", empty)
		return nil
	}
	for _, ev := range events {
		s.printf("%s\n", ev.Line())
	}
	return nil
}
