package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskboard-go/internal/companion"
	"github.com/nibzard/taskboard-go/internal/serial"
	"github.com/nibzard/taskboard-go/internal/storage"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, storage, logs and serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.doctor(cmd.OutOrStdout())
		},
	}
}

func (a *App) doctor(w io.Writer) error {
	fmt.Fprintln(w, "Taskboard Doctor")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	ok := true
	check := func(name string, err error) {
		fmt.Fprintf(w, "%s:\n", name)
		if err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			ok = false
			return
		}
		fmt.Fprintln(w, "  ✅ OK")
	}

	if path := a.cws.GetConfigFile(); path != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", path)
	} else {
		fmt.Fprintf(w, "Config file: (defaults)\n\n")
	}

	check("Config", a.cfg.Validate())
	check("Task store", checkStore(a.cfg.StoreBackend, a.cfg.StorePath))
	check("Log directory", checkWritableDir(a.cfg.LogDir))
	check("Mirror file", checkMirror(a.cfg.MirrorFile))

	// Missing ports are normal on a machine with no board attached.
	fmt.Fprintln(w, "Serial ports:")
	ports, err := serial.ListPorts()
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ⚠️  %v\n", err)
	case len(ports) == 0:
		fmt.Fprintln(w, "  ⚠️  none found")
	default:
		for _, p := range ports {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	fmt.Fprintln(w)
	if !ok {
		fmt.Fprintln(w, "⚠️  Some checks failed. Please fix the issues above.")
		return fmt.Errorf("doctor checks failed")
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

// checkStore opens the backend and validates the saved blob, if any.
func checkStore(backend, dir string) error {
	blobs, err := storage.Open(backend, dir)
	if err != nil {
		return err
	}
	defer blobs.Close()

	data, err := blobs.Get(tasks.BlobKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	res := tasks.ValidateBlob(data)
	if !res.Valid {
		return fmt.Errorf("saved tasks invalid: %w", errors.Join(res.Errors...))
	}
	return nil
}

// checkWritableDir creates dir if needed and proves a file can be written.
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func checkMirror(path string) error {
	if _, err := companion.LoadMirror(path); err != nil {
		return err
	}
	return checkWritableDir(filepath.Dir(path))
}
