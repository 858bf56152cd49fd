package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/athena/internal/server"
	"github.com/UnknownOlympus/athena/internal/services/refresher"
)

func (cl *commandline) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Keep the caches fresh and serve /metrics and /healthz until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			log := cl.deps.Logger
			cfg := cl.deps.Config

			var wgr sync.WaitGroup
			var runErr error

			health := server.NewHealthChecker(cl.api, cl.dir, log)
			service := refresher.NewService(log, cl.dir, cl.deps.Metrics)

			wgr.Add(2) //nolint:mnd // monitoring server and refresher

			go func() {
				defer wgr.Done()
				server.StartMonitoringServer(ctx, log, cl.deps.Registry, health, cfg.Monitoring.Port)
			}()

			go func() {
				defer wgr.Done()
				log.InfoContext(ctx, "Starting refresher")
				if runErr = service.Start(ctx, cfg.Sync.Interval); runErr != nil {
					log.ErrorContext(ctx, "Refresher failed", "error", runErr)
					// nothing left to monitor
					cancel()
				}
				log.InfoContext(ctx, "Refresher stopped.")
			}()

			log.InfoContext(ctx, "Sync started. Press Ctrl+C to stop.")
			wgr.Wait()

			return runErr
		},
	}
}
