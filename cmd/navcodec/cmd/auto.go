package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/navcodec/pkg/navfile"
)

func newAutoCmd() *cobra.Command {
	autoCmd := &cobra.Command{
		Use:   "auto",
		Short: "Process the well-known files in a directory",
		Long: `Decode wait2decode.nav into already_decode.txt and encode wait2encode.txt
into already_encode.nav, in the directory given by --directory or the current
directory. With --watch the directory is polled and files are processed again
whenever they change, until interrupted.

Examples:
  navcodec auto
  navcodec auto -d ./inbox --watch --interval 2s`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			watch, _ := cmd.Flags().GetBool("watch")
			interval, _ := cmd.Flags().GetDuration("interval")

			p, err := e.processor()
			if err != nil {
				return err
			}
			if watch {
				return p.Watch(cmd.Context(), e.cfg.Directory, interval)
			}
			_, err = p.AutoProcess(cmd.Context(), e.cfg.Directory)
			return err
		}),
	}

	autoCmd.Flags().Bool("watch", false, "keep running and process files when they change")
	autoCmd.Flags().Duration("interval", navfile.DefaultWatchInterval, "polling interval for --watch")
	return autoCmd
}
