package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paperwatch/internal/logger"
	"paperwatch/internal/pipeline"
	"paperwatch/internal/sched"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run on the configured daily schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Schedule.Enabled {
			return fmt.Errorf("schedule is disabled; enable schedule.enabled or use \"paperwatch run\"")
		}

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		s, err := sched.New(cfg.Schedule.Time, cfg.Schedule.RunOnStart, func(ctx context.Context) {
			result := p.Run(ctx)
			if !result.Success {
				logger.Warn("Scheduled run failed", "error", result.Err)
			}
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("Scheduler started", "time", cfg.Schedule.Time, "run_on_start", cfg.Schedule.RunOnStart)
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("Scheduler stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
