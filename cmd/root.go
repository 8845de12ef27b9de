// Package cmd implements the CLI command structure for taskboard.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nibzard/taskboard-go/internal/config"
	"github.com/nibzard/taskboard-go/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// App carries what every command needs once flags are parsed.
type App struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
}

// Run executes the taskboard CLI.
func Run(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Touchscreen task board firmware, simulator and PC companion",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Run the board headless on a serial port
  taskboard run --port /dev/ttyUSB0

  # Run the board in the terminal and print its virtual serial port
  taskboard sim

  # Talk to a board from the PC side
  taskboard pc list --port /dev/pts/4
  taskboard pc add "Ship v1" --month June --day 5 --eod
`),
	}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newSimCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newTailCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newPCCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load resolves the config layers and builds the console logger. Logs go
// to stderr so stdout stays free for a stdio serial link.
func (a *App) load(cmd *cobra.Command) error {
	cws, err := config.LoadWithSources(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cws = cws
	a.cfg = cws.Config
	a.logger = logging.NewConsole(cmd.ErrOrStderr(), a.cfg.ConsoleOptions())
	return nil
}

// requireValid rejects a config that fails validation.
func (a *App) requireValid() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "taskboard version %s\n", Version)
			return nil
		},
	}
}

// workDir returns the directory traffic logs are grouped by.
func workDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// quietCancel treats a cancelled context as a clean exit.
func quietCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeLines(w io.Writer, lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
