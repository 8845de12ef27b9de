package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskboard-go/internal/logging"
)

func newTailCmd(app *App) *cobra.Command {
	var (
		follow   bool
		lines    int
		sessions bool
	)
	cmd := &cobra.Command{
		Use:   "tail [SESSION]",
		Short: "Show the latest serial traffic log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := workDir()
			if err != nil {
				return err
			}
			logDir, err := logging.FindLogDir(app.cfg.LogDir, wd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if sessions {
				list, err := logging.ListSessions(logDir)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No log files found.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SESSION\tMODIFIED\tSIZE")
				for _, s := range list {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", s.ID, s.ModTime.Format("2006-01-02 15:04:05"), s.Size)
				}
				return tw.Flush()
			}

			path, err := sessionPath(logDir, args)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(out, "No log files found.")
				return nil
			}
			if follow {
				fmt.Fprintf(cmd.ErrOrStderr(), "Tailing: %s\n(Ctrl+C to stop)\n", path)
			}
			return quietCancel(logging.TailLog(cmd.Context(), out, path, lines, follow))
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new traffic")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "List sessions instead of tailing")
	return cmd
}

// sessionPath resolves the requested session, or the newest one.
func sessionPath(logDir string, args []string) (string, error) {
	if len(args) == 0 {
		return logging.FindLatestLog(logDir)
	}
	list, err := logging.ListSessions(logDir)
	if err != nil {
		return "", err
	}
	for _, s := range list {
		if s.ID == args[0] {
			return s.Path, nil
		}
	}
	return "", fmt.Errorf("session %q not found in %s", args[0], logDir)
}
