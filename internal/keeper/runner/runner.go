package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/types"
)

// Handler is one scheduled check. The runner owns the schedule; the
// handler owns the work.
type Handler interface {
	Name() string
	Run(ctx context.Context) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	HandlerName string
	Func        func(ctx context.Context) error
}

func (h HandlerFunc) Name() string                  { return h.HandlerName }
func (h HandlerFunc) Run(ctx context.Context) error { return h.Func(ctx) }

// Runner schedules handlers locally from their trigger specs. Only cron
// and fixed-interval triggers run here; block and event triggers are
// executed by the automation platform, not this process.
type Runner struct {
	scheduler *cron.Cron
	logger    logging.Logger
}

func NewRunner(logger logging.Logger) *Runner {
	return &Runner{
		scheduler: cron.New(),
		logger:    logger,
	}
}

// Register schedules handler according to trigger.
func (r *Runner) Register(trigger types.Trigger, handler Handler) error {
	var schedule string

	switch t := trigger.(type) {
	case types.CronTrigger:
		if _, err := cron.ParseStandard(t.Expression); err != nil {
			return fmt.Errorf("handler %s has invalid cron expression %q: %w", handler.Name(), t.Expression, err)
		}
		schedule = t.Expression
	case types.TimeTrigger:
		if t.IntervalMs <= 0 {
			return fmt.Errorf("handler %s has non-positive interval %dms", handler.Name(), t.IntervalMs)
		}
		schedule = fmt.Sprintf("@every %s", time.Duration(t.IntervalMs)*time.Millisecond)
	case types.BlockTrigger, types.EventTrigger:
		return fmt.Errorf("handler %s uses a %s trigger, which only the automation platform can run", handler.Name(), t.TriggerType())
	default:
		return fmt.Errorf("handler %s has unknown trigger type %T", handler.Name(), trigger)
	}

	_, err := r.scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := handler.Run(ctx); err != nil {
			r.logger.Error("Scheduled check failed", "handler", handler.Name(), "error", err)
			return
		}
		r.logger.Debug("Scheduled check completed", "handler", handler.Name())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule handler %s: %w", handler.Name(), err)
	}

	r.logger.Info("Registered handler", "handler", handler.Name(), "schedule", schedule)
	return nil
}

// Start runs the scheduler until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.scheduler.Start()
	<-ctx.Done()

	stopCtx := r.scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		r.logger.Warn("Timed out waiting for running checks to finish")
	}
}
