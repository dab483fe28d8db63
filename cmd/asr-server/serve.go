package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/asr-server/bootstrap"
)

// shutdownMargin covers the hooks and components that stop after the HTTP
// server has drained.
const shutdownMargin = 5 * time.Second

// shutdownBudget is the whole graceful shutdown window: the server's drain
// time plus a margin for everything that stops after it.
func shutdownBudget(cfg *AppConfig) time.Duration {
	return time.Duration(cfg.Server.ShutdownTimeout)*time.Second + shutdownMargin
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transcription service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			svc, err := newService(cfg, bootstrap.WithGracefulTimeout(shutdownBudget(cfg)))
			if err != nil {
				return err
			}
			svc.withHTTPServer()
			return svc.app.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	return cmd
}
