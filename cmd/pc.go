package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskboard-go/internal/companion"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/serial"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

func newPCCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pc",
		Short: "Manage a board's tasks from this computer",
		Long: `Manage a board's tasks over its serial link. Every change is written to
the local mirror file first and then sent to the board; the board's list
is read back afterwards.`,
	}
	cmd.AddCommand(
		newPCListCmd(app),
		newPCAddCmd(app),
		newPCEditCmd(app),
		newPCRemoveCmd(app),
		newPCMoveCmd(app),
		newPCClearCmd(app),
		newPCScreenCmd(app),
		newPCTimeCmd(app),
		newPCPushCmd(app),
		newPCExportCmd(app),
		newPCImportCmd(app),
		newPCWatchCmd(app),
		newPCPortsCmd(),
	)
	return cmd
}

// link is an open companion session.
type link struct {
	client *companion.Client
	port   serial.Port
	cancel context.CancelFunc
}

func (l *link) Close() error {
	l.cancel()
	return l.port.Close()
}

// connect opens the configured port and loads the mirror file.
func (a *App) connect(ctx context.Context) (*link, error) {
	if err := a.requireValid(); err != nil {
		return nil, err
	}
	switch strings.ToLower(a.cfg.Port) {
	case "", serial.PortStdio, serial.PortPTY:
		return nil, fmt.Errorf("pc commands need the board's port (--port /dev/ttyUSB0, or the path printed by taskboard sim)")
	}
	port, err := serial.Open(a.cfg.Port, a.cfg.Baud)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	client := companion.New(port, serial.Pump(ctx, port, a.logger), companion.Options{
		MirrorPath:   a.cfg.MirrorFile,
		NotesMax:     a.cfg.NotesMaxLen,
		ReplyTimeout: a.cfg.ReplyTimeout(),
		Logger:       a.logger,
		Traffic:      logging.NewConsoleWriter(a.logger),
	})
	l := &link{client: client, port: port, cancel: cancel}
	if err := client.LoadMirror(); err != nil {
		l.Close()
		return nil, fmt.Errorf("reading mirror: %w", err)
	}
	return l, nil
}

// withLink runs fn against a fresh link and prints the resulting list.
func (a *App) withLink(cmd *cobra.Command, output string, fn func(ctx context.Context, c *companion.Client) ([]tasks.Task, error)) error {
	l, err := a.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer l.Close()
	list, err := fn(cmd.Context(), l.client)
	if err != nil {
		return err
	}
	reportDuplicates(cmd.ErrOrStderr(), l.client)
	return printTasks(cmd.OutOrStdout(), list, output)
}

func reportDuplicates(w io.Writer, c *companion.Client) {
	for _, title := range c.Duplicates() {
		fmt.Fprintf(w, "board already has %q\n", title)
	}
}

func newPCListCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the board's tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.List(ctx)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

// taskFlags holds the per-field flags shared by add and edit.
type taskFlags struct {
	title  string
	month  string
	day    int
	time   string
	eod    bool
	status string
	notes  string
}

func (f *taskFlags) bind(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	}
	cmd.Flags().StringVar(&f.month, "month", "", "Month name, e.g. June")
	cmd.Flags().IntVar(&f.day, "day", 0, "Day of month (0 for no date)")
	cmd.Flags().StringVar(&f.time, "time", "", "Time label, e.g. \"3:30 PM\"")
	cmd.Flags().BoolVar(&f.eod, "eod", false, "Flag as due by end of day")
	cmd.Flags().StringVar(&f.status, "status", "", "Status: "+statusNames())
	cmd.Flags().StringVar(&f.notes, "notes", "", "Notes")
}

func (f *taskFlags) parseStatus() (tasks.Status, error) {
	st, ok := tasks.ParseStatus(f.status)
	if !ok {
		return "", fmt.Errorf("unknown status %q (expected %s)", f.status, statusNames())
	}
	return st, nil
}

// patch builds an edit from the flags the user set.
func (f *taskFlags) patch(cmd *cobra.Command) (tasks.Patch, error) {
	var p tasks.Patch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("month") {
		p.Month = &f.month
	}
	if changed("day") {
		p.Day = &f.day
	}
	if changed("time") {
		p.Time = &f.time
	}
	if changed("eod") {
		p.Priority = &f.eod
	}
	if changed("status") {
		st, err := f.parseStatus()
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if changed("notes") {
		p.Notes = &f.notes
	}
	return p, nil
}

func statusNames() string {
	names := []string{"none"}
	for _, st := range tasks.Statuses() {
		names = append(names, strconv.Quote(string(st)))
	}
	return strings.Join(names, ", ")
}

func newPCAddCmd(app *App) *cobra.Command {
	var (
		f      taskFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.parseStatus()
			if err != nil {
				return err
			}
			t := tasks.Task{
				Title:    args[0],
				Month:    f.month,
				Day:      f.day,
				Time:     f.time,
				Priority: f.eod,
				Status:   st,
				Notes:    f.notes,
			}
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Add(ctx, t)
			})
		},
	}
	f.bind(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCEditCmd(app *App) *cobra.Command {
	var (
		f      taskFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := f.patch(cmd)
			if err != nil {
				return err
			}
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Edit(ctx, id, p)
			})
		},
	}
	f.bind(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCRemoveCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Delete(ctx, id)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCMoveCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move a task to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseID(args[0])
			if err != nil {
				return err
			}
			dst, err := parseID(args[1])
			if err != nil {
				return err
			}
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Move(ctx, src, dst)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task on the board and in the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clear deletes every task; pass --yes to confirm")
			}
			return app.withLink(cmd, "text", func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Clear(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm")
	return cmd
}

func newPCScreenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "screen on|off",
		Short:     "Switch the board's backlight",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch strings.ToLower(args[0]) {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			l, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()
			return l.client.Screen(on)
		},
	}
}

func newPCTimeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "time",
		Short: "Set the board clock to this computer's time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()
			return l.client.SyncTime()
		},
	}
}

func newPCPushCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "push",
		Aliases: []string{"connect", "sync"},
		Short:   "Set the clock, send the mirror to the board and read its list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withLink(cmd, output, func(ctx context.Context, c *companion.Client) ([]tasks.Task, error) {
				return c.Connect(ctx)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCWatchCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and keep the mirror following the board",
		Long: `Connect once, then keep the link open. Changes made on the board are
applied to the mirror as they arrive, the clock is resent every
sync_interval_s and the list is refreshed every list_interval_s. The list
is printed whenever it changes. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			shown := 0
			var printErr error
			err = l.client.Watch(cmd.Context(), companion.WatchOptions{
				SyncEvery: app.cfg.SyncInterval(),
				ListEvery: app.cfg.ListInterval(),
				OnChange: func(list []tasks.Task) {
					dups := l.client.Duplicates()
					for _, title := range dups[shown:] {
						fmt.Fprintf(cmd.ErrOrStderr(), "board already has %q\n", title)
					}
					shown = len(dups)
					if err := printTasks(cmd.OutOrStdout(), list, output); err != nil && printErr == nil {
						printErr = err
					}
				},
			})
			if err != nil {
				return err
			}
			return printErr
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func newPCExportCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the board's tasks as a JSON or YAML document",
		Long: `Read the board's list and write it as {"tasks": [...]}. The format comes
from --output, or from the file extension. "-" or no file writes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			f, err := documentFormat(format, path)
			if err != nil {
				return err
			}

			l, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()
			if _, err := l.client.List(cmd.Context()); err != nil {
				return err
			}

			if path == "-" {
				return l.client.Export(cmd.OutOrStdout(), f)
			}
			out, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := l.client.Export(out, f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d tasks to %s\n", len(l.client.Tasks()), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "", "Document format (json, yaml)")
	return cmd
}

func newPCImportCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add the tasks of a JSON or YAML document, skipping ones already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := documentFormat(format, path)
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			l, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()
			// Pick up the board's list first so duplicates are judged
			// against what it really holds.
			if _, err := l.client.List(cmd.Context()); err != nil {
				return err
			}
			res, list, err := l.client.Import(cmd.Context(), in, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d tasks, skipped %d duplicates\n", res.Added, res.Skipped)
			reportDuplicates(cmd.ErrOrStderr(), l.client)
			return printTasks(cmd.OutOrStdout(), list, "text")
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format (json, yaml)")
	return cmd
}

func newPCPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serial.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
				return nil
			}
			writeLines(cmd.OutOrStdout(), ports...)
			return nil
		},
	}
}

// documentFormat picks the explicit format, else the one the path implies.
func documentFormat(explicit, path string) (companion.Format, error) {
	if explicit != "" {
		return companion.ParseFormat(explicit)
	}
	if path == "-" {
		return companion.FormatJSON, nil
	}
	return companion.FormatForPath(path), nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid task index %q", s)
	}
	return id, nil
}
