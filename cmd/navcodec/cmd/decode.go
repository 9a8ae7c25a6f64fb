package cmd

import (
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <input.nav> <output.txt>",
		Short: "Decode a NAV file to text",
		Long: `Decode a NAV file to text. The header is copied as is and the content
is XORed with the key. Missing parent directories of the output are created.

Examples:
  navcodec decode route.nav route.txt
  navcodec decode -k 0x85 --encoding windows-1252 route.nav out/route.txt`,
		Args: cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			p, err := e.processor()
			if err != nil {
				return err
			}
			return p.DecodeFile(cmd.Context(), args[0], args[1])
		}),
	}
}
