package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/config"
	"github.com/rickchristie/chefbot/models"
	"github.com/rickchristie/chefbot/telemetry"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms/openai"
)

const shutdownTimeout = 5 * time.Second

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	sink     chefbot.Sink
	shutdown telemetry.ShutdownFunc
	stats    *telemetry.Stats
	clock    chefbot.TimeProvider
	logOut   io.Writer

	// newModel builds the Chat Completion Service client for a model name.
	newModel func(name string) (chefbot.Model, error)
}

func newApp() *app {
	a := &app{
		logger: zerolog.Nop(),
		sink:   chefbot.NopSink{},
		stats:  telemetry.NewStats(),
		clock:  chefbot.NewDefaultTimeProvider(),
		logOut: os.Stderr,
	}
	a.newModel = a.groqModel
	return a
}

// init loads configuration and sets up logging and telemetry. logLevel overrides the
// configured level when set.
func (a *app) init(ctx context.Context, logLevel string) error {
	if a.cfg == nil {
		a.cfg = config.Load()
	}
	if logLevel != "" {
		a.cfg.LogLevel = logLevel
	}

	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.logOut, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	sink, shutdown, err := telemetry.Setup(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.sink = telemetry.Multi(sink, a.stats)
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry. It is safe to call when init never ran.
func (a *app) close() {
	if a.shutdown == nil {
		return
	}
	ctx, cancel := contextWithShutdownTimeout()
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("telemetry shutdown failed")
	}
	a.shutdown = nil
}

// printStats writes the usage counters collected during the command.
func (a *app) printStats(out io.Writer) {
	counters := a.stats.Counters()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "--- stats (%d tokens) ---\n", a.stats.TotalTokens())
	for _, k := range keys {
		fmt.Fprintf(out, "%-50s %d\n", k, counters[k])
	}
}

func contextWithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}

func (a *app) groqModel(name string) (chefbot.Model, error) {
	m, err := models.NewGroqModel(name, a.cfg.Groq.APIKey, openai.WithBaseURL(a.cfg.Groq.BaseURL))
	if err != nil {
		return nil, err
	}
	return m.WithSink(a.sink).WithLogger(a.logger), nil
}
