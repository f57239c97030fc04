package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/ingest"
	"github.com/sells-group/netusage/internal/model"
)

// importRunner runs a full import for a period.
type importRunner interface {
	ImportAll(ctx context.Context, p model.Period, opts ingest.RunOpts) (*ingest.RunSummary, error)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the monthly import on a cron schedule",
	Long:  "Starts a long-running scheduler that imports the previous month on schedule.cron. Stops on SIGINT or SIGTERM.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		expr := cfg.Schedule.Cron
		if override, _ := cmd.Flags().GetString("cron"); override != "" {
			expr = override
		}

		s, err := newScheduler(ctx, env.Pipeline, clock, expr, cfg.Schedule.LagMonths)
		if err != nil {
			return err
		}

		zap.L().Info("scheduler started", zap.String("cron", expr))
		s.StartAsync()
		<-ctx.Done()
		s.Stop()
		zap.L().Info("scheduler stopped")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("cron", "", "cron expression (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}

// newScheduler registers a single-instance cron job importing the previous
// period as seen by c at each tick.
func newScheduler(ctx context.Context, runner importRunner, c clockwork.Clock, expr string, lag int) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	_, err := s.Cron(expr).Do(func() {
		scheduledImport(ctx, runner, c, lag)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: invalid cron %q", expr)
	}
	return s, nil
}

func scheduledImport(ctx context.Context, runner importRunner, c clockwork.Clock, lag int) {
	p := model.PreviousPeriod(c.Now(), lag)
	log := zap.L().With(zap.String("component", "schedule"), zap.Stringer("period", p))
	log.Info("scheduled import starting")

	sum, err := runner.ImportAll(ctx, p, ingest.RunOpts{})
	if err != nil {
		log.Error("scheduled import failed", zap.Error(err))
		return
	}
	failed := 0
	for _, imp := range sum.Importers {
		if imp.Failed() {
			failed++
		}
	}
	log.Info("scheduled import complete",
		zap.String("run_id", sum.RunID),
		zap.Int("importers_failed", failed),
	)
}
