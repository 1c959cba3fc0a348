package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/numethods/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver tools over HTTP",
		Long: `Runs the JSON tool endpoint for agent frameworks.

  POST /tool    execute a tool call
  GET  /schema  tool schema for agent registration
  GET  /health  liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			if cmd.Flags().Changed("host") {
				sc.Host = host
			}
			if cmd.Flags().Changed("port") {
				sc.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:            sc.Addr(),
				ReadTimeout:     sc.ReadTimeout.Duration,
				WriteTimeout:    sc.WriteTimeout.Duration,
				MaxBodyBytes:    sc.MaxBodyBytes,
				RateLimit:       sc.RateLimit,
				Burst:           sc.Burst,
				MaxRationalBits: sc.MaxRationalBits,
			}, a.log.Named("server"))

			fmt.Fprintf(cmd.OutOrStdout(), "numethods tool server listening on %s\n", sc.Addr())
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config, 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config, 8080)")
	return cmd
}
