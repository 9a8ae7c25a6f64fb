package cmd

import (
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <input.txt> <output.nav>",
		Short: "Encode a text file to NAV",
		Long: `Encode a text file to NAV. Lines are header until the first line longer
than the content line threshold; that line and everything after it is XORed.

Examples:
  navcodec encode route.txt route.nav`,
		Args: cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			p, err := e.processor()
			if err != nil {
				return err
			}
			return p.EncodeFile(cmd.Context(), args[0], args[1])
		}),
	}
}
