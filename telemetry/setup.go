package telemetry

import (
	"context"
	"errors"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/config"
	"github.com/rs/zerolog"
)

// Setup builds the process sink from cfg: a LogSink always, Langfuse when both keys are set
// and OpenTelemetry when tracing is enabled. The returned shutdown flushes Langfuse and the
// tracer provider.
func Setup(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (chefbot.Sink, ShutdownFunc, error) {
	sinks := []chefbot.Sink{NewLogSink(logger)}
	var shutdowns []ShutdownFunc

	if cfg.Langfuse.Enabled() {
		lf := NewLangfuse(cfg.Langfuse, LangfuseOptions{Logger: logger})
		sinks = append(sinks, lf)
		shutdowns = append(shutdowns, lf.Close)
		logger.Info().Str("url", cfg.Langfuse.BaseURL).Msg("Langfuse tracing enabled")
	}

	if cfg.Telemetry.Enabled {
		tp, shutdown, err := InitTracing(ctx, cfg.Telemetry, logger)
		if err != nil {
			for _, fn := range shutdowns {
				_ = fn(ctx)
			}
			return nil, nil, err
		}
		sinks = append(sinks, NewOTelSink(tp))
		shutdowns = append(shutdowns, shutdown)
	}

	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}
	return Multi(sinks...), shutdown, nil
}
