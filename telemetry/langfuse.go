package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/config"
	"github.com/rs/zerolog"
)

// IngestionPath is the Langfuse batch ingestion endpoint.
const IngestionPath = "/api/public/ingestion"

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 2 * time.Second
	DefaultQueueSize     = 1024
	defaultHTTPTimeout   = 10 * time.Second
)

// LangfuseOptions tunes the Langfuse sink. Zero values select the defaults.
type LangfuseOptions struct {
	HTTPClient    *http.Client
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
	Logger        zerolog.Logger
}

// ingestionEvent is one entry of an ingestion batch.
type ingestionEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Body      map[string]any `json:"body"`
}

type ingestionBatch struct {
	Batch    []ingestionEvent `json:"batch"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

// Langfuse is a [chefbot.Sink] that ships events to Langfuse.
//
// Emit only enqueues. A background worker sends a batch when BatchSize events are pending and
// on every FlushInterval tick. When the queue is full the event is dropped and a warning is
// logged. Events emitted outside a trace are ignored.
type Langfuse struct {
	endpoint  string
	publicKey string
	secretKey string
	client    *http.Client
	batchSize int
	interval  time.Duration
	logger    zerolog.Logger

	queue    chan ingestionEvent
	flushReq chan chan error
	done     chan struct{}
	stopped  chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
}

// NewLangfuse starts a Langfuse sink. Call Close to flush pending events and stop the worker.
func NewLangfuse(cfg config.LangfuseConfig, opts LangfuseOptions) *Langfuse {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	l := &Langfuse{
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + IngestionPath,
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		client:    opts.HTTPClient,
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		logger:    opts.Logger,
		queue:     make(chan ingestionEvent, opts.QueueSize),
		flushReq:  make(chan chan error),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Emit implements chefbot.Sink.
func (l *Langfuse) Emit(ctx context.Context, event chefbot.TraceEvent) {
	if l.closed.Load() {
		return
	}
	info, ok := chefbot.TraceFrom(ctx)
	if !ok {
		return
	}
	ev, ok := toIngestionEvent(info, event)
	if !ok {
		return
	}

	select {
	case l.queue <- ev:
	default:
		n := l.dropped.Add(1)
		l.logger.Warn().Str("type", ev.Type).Int64("dropped", n).Msg("langfuse queue full, dropping event")
	}
}

// Dropped returns how many events were dropped because the queue was full.
func (l *Langfuse) Dropped() int64 {
	return l.dropped.Load()
}

// Flush sends every queued event and waits for the result.
func (l *Langfuse) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case l.flushReq <- reply:
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending events and stops the worker. Events emitted after Close are dropped.
func (l *Langfuse) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})

	select {
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Langfuse) run() {
	defer close(l.stopped)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var pending []ingestionEvent
	for {
		select {
		case ev := <-l.queue:
			pending = append(pending, ev)
			if len(pending) >= l.batchSize {
				_ = l.send(pending)
				pending = nil
			}

		case <-ticker.C:
			if len(pending) > 0 {
				_ = l.send(pending)
				pending = nil
			}

		case reply := <-l.flushReq:
			pending = l.drain(pending)
			reply <- l.send(pending)
			pending = nil

		case <-l.done:
			_ = l.send(l.drain(pending))
			return
		}
	}
}

func (l *Langfuse) drain(pending []ingestionEvent) []ingestionEvent {
	for {
		select {
		case ev := <-l.queue:
			pending = append(pending, ev)
		default:
			return pending
		}
	}
}

// send posts events in chunks of batchSize. Every chunk is attempted; the first error is
// returned.
func (l *Langfuse) send(events []ingestionEvent) error {
	var firstErr error
	for start := 0; start < len(events); start += l.batchSize {
		end := min(start+l.batchSize, len(events))
		if err := l.post(events[start:end]); err != nil {
			l.logger.Warn().Err(err).Int("events", end-start).Msg("langfuse ingestion failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (l *Langfuse) post(events []ingestionEvent) error {
	body, err := json.Marshal(ingestionBatch{
		Batch:    events,
		Metadata: map[string]any{"sdk_name": "chefbot", "batch_size": len(events)},
	})
	if err != nil {
		return fmt.Errorf("langfuse: marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("langfuse: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(l.publicKey, l.secretKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("langfuse: send batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrIngestion, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ErrIngestion is returned by Flush when Langfuse rejects a batch.
var ErrIngestion = errors.New("langfuse: ingestion rejected")

// -----------------------------------------------------------------------------
// Event mapping
// -----------------------------------------------------------------------------

func toIngestionEvent(info chefbot.TraceInfo, event chefbot.TraceEvent) (ingestionEvent, bool) {
	switch e := event.(type) {
	case chefbot.TraceStart:
		return newIngestion("trace-create", e.Time, map[string]any{
			"id":        info.ID,
			"name":      e.Name,
			"tags":      e.Tags,
			"metadata":  e.Metadata,
			"timestamp": e.Time,
		}), true

	case chefbot.ModelCallTrace:
		body := map[string]any{
			"id":        chefbot.NewTraceID(),
			"traceId":   info.ID,
			"name":      "model_call",
			"model":     e.Model,
			"startTime": e.Time.Add(-e.Duration),
			"endTime":   e.Time,
			"output":    e.Output,
			"metadata": map[string]any{
				"message_count": e.MessageCount,
				"tool_calls":    e.ToolCalls,
			},
			"usage": map[string]any{
				"input":  e.InputTokens,
				"output": e.OutputTokens,
				"total":  e.InputTokens + e.OutputTokens,
				"unit":   "TOKENS",
			},
		}
		markError(body, e.Error)
		return newIngestion("generation-create", e.Time, body), true

	case chefbot.ToolCallTrace:
		body := map[string]any{
			"id":        chefbot.NewTraceID(),
			"traceId":   info.ID,
			"name":      e.ToolName,
			"startTime": e.Time.Add(-e.Duration),
			"endTime":   e.Time,
			"input":     e.Arguments,
			"output":    e.Result,
			"metadata":  map[string]any{"call_id": e.CallID},
		}
		markError(body, e.Error)
		return newIngestion("span-create", e.Time, body), true

	case chefbot.StageTrace:
		return newIngestion("event-create", e.Time, map[string]any{
			"id":        chefbot.NewTraceID(),
			"traceId":   info.ID,
			"name":      e.Stage,
			"startTime": e.Time,
			"metadata":  e.Metadata,
		}), true

	case chefbot.LogTrace:
		return newIngestion("event-create", e.Time, map[string]any{
			"id":            chefbot.NewTraceID(),
			"traceId":       info.ID,
			"name":          "log",
			"startTime":     e.Time,
			"level":         string(e.Level),
			"statusMessage": e.Message,
		}), true

	case chefbot.ScoreTrace:
		body := map[string]any{
			"id":      chefbot.NewTraceID(),
			"traceId": info.ID,
			"name":    e.Name,
			"value":   e.Value,
		}
		if e.Comment != "" {
			body["comment"] = e.Comment
		}
		return newIngestion("score-create", e.Time, body), true
	}
	return ingestionEvent{}, false
}

func newIngestion(typ string, ts time.Time, body map[string]any) ingestionEvent {
	return ingestionEvent{ID: chefbot.NewTraceID(), Type: typ, Timestamp: ts, Body: body}
}

func markError(body map[string]any, err error) {
	if err == nil {
		return
	}
	body["level"] = string(chefbot.LogLevelError)
	body["statusMessage"] = err.Error()
}

var _ chefbot.Sink = (*Langfuse)(nil)
