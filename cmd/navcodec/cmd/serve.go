package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ssargent/navcodec/pkg/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the navcodec REST API server. Decode and encode requests use the
codec settings from the config file and flags; the key and steps query
parameters override them per request. When an API key is configured every
/api/v1 request must carry it in the X-API-Key header.

Examples:
  navcodec serve
  navcodec serve --port 9000 --api-key mysecretkey --journal-dir ./journal`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if container == nil {
				return fmt.Errorf("dependency container not initialized")
			}

			undo, err := maxprocs.Set(maxprocs.Logger(e.log.Printf))
			if err != nil {
				e.log.Warn().Err(err).Msg("failed to set GOMAXPROCS")
			}
			defer undo()

			srv := e.cfg.Server
			if cmd.Flags().Changed("port") {
				srv.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				srv.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				srv.APIKey, _ = cmd.Flags().GetString("api-key")
			}
			if srv.APIKey == "" {
				e.log.Warn().Msg("No API key configured, authentication is disabled")
			}

			var runs api.RunStore
			if e.journal != nil {
				runs = e.journal
			}

			starter := container.GetServerFactory().CreateServerStarter()
			return starter.StartServer(cmd.Context(), api.ServerConfig{
				Port:   srv.Port,
				Bind:   srv.Bind,
				APIKey: srv.APIKey,
				Codec:  e.cfg.Codec,
			}, runs, e.log)
		}),
	}

	serveCmd.Flags().IntP("port", "p", 8085, "port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "address to bind to")
	serveCmd.Flags().String("api-key", "", "API key required in the X-API-Key header")
	return serveCmd
}
