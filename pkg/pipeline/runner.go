package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"blockforge/pkg/logger"
	"blockforge/pkg/telemetry"
)

// Runner drives the stages of a job in order, timing each one.
type Runner struct {
	stages []Stage
	logger zerolog.Logger
}

func NewRunner(stages []Stage) *Runner {
	if len(stages) == 0 {
		panic("pipeline stages must be non-empty")
	}
	return &Runner{
		stages: stages,
		logger: logger.Component("pipeline"),
	}
}

// Run executes the job. A stage returning ErrSkip stops the job cleanly;
// any other error aborts it.
func (r *Runner) Run(ctx context.Context, state *State) error {
	jobLog := r.logger.With().Str("job_id", state.JobID).Logger()
	jobLog.Info().Int("stages", len(r.stages)).Msg("starting job")

	for _, stage := range r.stages {
		start := time.Now()
		err := stage.Run(ctx, state)
		elapsed := time.Since(start)
		telemetry.StageDuration.WithLabelValues(stage.Name()).Observe(elapsed.Seconds())

		if errors.Is(err, ErrSkip) {
			jobLog.Info().
				Str("stage", stage.Name()).
				Str("reason", err.Error()).
				Msg("job skipped")
			telemetry.RunsTotal.WithLabelValues("skipped").Inc()
			return nil
		}
		if err != nil {
			jobLog.Error().
				Err(err).
				Str("stage", stage.Name()).
				Dur("elapsed", elapsed).
				Msg("stage failed")
			telemetry.RunsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		jobLog.Debug().
			Str("stage", stage.Name()).
			Dur("elapsed", elapsed).
			Msg("stage completed")
	}

	telemetry.RunsTotal.WithLabelValues("succeeded").Inc()
	telemetry.ScenesProcessed.Add(float64(len(state.Scenes)))
	jobLog.Info().Int("scenes", len(state.Scenes)).Msg("job completed")
	return nil
}
