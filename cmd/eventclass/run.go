package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "eventclass/internal/log"
	"eventclass/internal/pipeline"
	"eventclass/internal/store"
)

func runCommand(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full scrape-classify-propagate-retrain pipeline",
		Long: `Run the automated pipeline: scrape the calendar, classify with the
current model, merge labels, propagate across series, and retrain on
the grown labeled set. With --once the pipeline runs a single cycle;
otherwise it runs on the schedule from the config file until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.cfg.StorePath)
			if err != nil {
				appLog.Warn("run history unavailable", "path", a.cfg.StorePath, "error", err)
				s = nil
			} else {
				defer s.Close()
			}

			r := &pipeline.Runner{Cfg: a.cfg, Store: s}
			if once {
				return r.RunOnce(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return r.Schedule(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single pipeline cycle and exit")
	return cmd
}
