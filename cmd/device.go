package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nibzard/taskboard-go/internal/board"
	"github.com/nibzard/taskboard-go/internal/device"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/serial"
	"github.com/nibzard/taskboard-go/internal/storage"
	"github.com/nibzard/taskboard-go/internal/tasks"
	"github.com/nibzard/taskboard-go/internal/ui"
)

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the board headless on the configured serial port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runDevice(cmd.Context())
		},
	}
}

func newSimCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sim",
		Short: "Run the board in the terminal; clicks are touches",
		Long: `Run the board in the terminal. The serial link defaults to a fresh
pseudo-terminal whose path is shown in the status line; point a companion
at it with "taskboard pc ... --port <path>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSim(cmd.Context(), cmd.ErrOrStderr())
		},
	}
}

// boardRig is a wired device and the resources it holds.
type boardRig struct {
	app     *device.App
	port    serial.Port
	blobs   storage.BlobStore
	session *logging.SessionLog
}

func (r *boardRig) Close() error {
	closers := make([]io.Closer, 0, 3)
	if r.port != nil {
		closers = append(closers, r.port)
	}
	if r.blobs != nil {
		closers = append(closers, r.blobs)
	}
	if r.session != nil {
		closers = append(closers, r.session)
	}
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBoard opens storage, the serial port and the traffic log, and builds
// the device around renderer and touch.
func (a *App) openBoard(ctx context.Context, portName string, r board.Renderer, touch board.TouchSource, logger *log.Logger) (*boardRig, error) {
	if err := a.requireValid(); err != nil {
		return nil, err
	}
	rig := &boardRig{}

	blobs, err := storage.Open(a.cfg.StoreBackend, a.cfg.StorePath)
	if err != nil {
		// A board without storage still runs; it just forgets on restart.
		logger.Warn("storage unavailable, running without persistence", "err", err)
	} else {
		rig.blobs = blobs
	}

	port, err := serial.Open(portName, a.cfg.Baud)
	if err != nil {
		rig.Close()
		return nil, err
	}
	rig.port = port

	wd, err := workDir()
	if err != nil {
		rig.Close()
		return nil, err
	}
	session, err := logging.NewSessionLog(a.cfg.LogDir, wd)
	if err != nil {
		logger.Warn("traffic log unavailable", "err", err)
	} else {
		rig.session = session
		logger = logger.With("session", session.ID)
	}

	var traffic logging.Writer = logging.NewConsoleWriter(logger)
	if session != nil {
		traffic = logging.NewMultiWriter(logging.NewJSONLWriter(session.Writer()), traffic)
	}

	rig.app = device.New(device.Config{
		Store:    tasks.NewStore(rig.blobs, logger),
		Renderer: r,
		Touch:    touch,
		Inbound:  serial.Pump(ctx, port, logger),
		Outbound: port,
		Options: device.Options{
			PollInterval:     a.cfg.PollInterval(),
			Debounce:         a.cfg.Debounce(),
			SleepAt:          a.cfg.SleepAtMinutes(),
			EODAt:            a.cfg.EODAtMinutes(),
			UTCOffsetMinutes: a.cfg.UTCOffsetMinutes,
			Logger:           logger,
			Traffic:          traffic,
		},
	})
	logger.Info("serial link open", "port", port.Name())
	return rig, nil
}

func (a *App) runDevice(ctx context.Context) error {
	if a.cfg.Port == serial.PortPTY {
		return fmt.Errorf("port %q needs the simulator; use taskboard sim", serial.PortPTY)
	}
	// Headless boards still draw, into an off-screen canvas.
	rig, err := a.openBoard(ctx, a.cfg.Port, ui.NewCanvas(), nil, a.logger)
	if err != nil {
		return err
	}
	defer rig.Close()
	return quietCancel(rig.app.Run(ctx))
}

func (a *App) runSim(ctx context.Context, stderr io.Writer) error {
	portName := a.cfg.Port
	if portName == serial.PortStdio {
		portName = serial.PortPTY
	}

	// The terminal belongs to the simulator; keep only warnings on stderr
	// once it exits.
	logger := logging.Discard()
	canvas := ui.NewCanvas()
	touch := &ui.TapSource{}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rig, err := a.openBoard(ctx, portName, canvas, touch, logger)
	if err != nil {
		return err
	}
	defer rig.Close()

	fmt.Fprintf(stderr, "serial link: %s\n", rig.port.Name())
	model := ui.NewModel(rig.app, canvas, touch, ui.Options{
		Port:         rig.port.Name(),
		TickInterval: a.cfg.PollInterval(),
	})
	return quietCancel(ui.Run(ctx, model))
}
