// Package telemetry counts what crosses the socket and the action API. Counts
// go to the global OpenTelemetry meter and are mirrored locally so the debug
// surface can report them without an exporter.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const scope = "github.com/DoyleJ11/monopoly-client"

// Drop reasons.
const (
	DropMalformed    = "malformed"
	DropStale        = "stale"
	DropDisconnected = "disconnected"
	DropNotYourTurn  = "not_your_turn"
)

type Counts struct {
	Sent       int64 `json:"sent"`
	Received   int64 `json:"received"`
	Dropped    int64 `json:"dropped"`
	Unknown    int64 `json:"unknown"`
	Actions    int64 `json:"actions"`
	Failures   int64 `json:"failures"`
	Reconnects int64 `json:"reconnects"`
}

type Recorder struct {
	log *zap.Logger

	frames     metric.Int64Counter
	dropped    metric.Int64Counter
	unknown    metric.Int64Counter
	actions    metric.Int64Counter
	reconnects metric.Int64Counter

	sent, received, drops, unknowns, acts, failures, redials atomic.Int64
}

// New records against the global meter provider.
func New(log *zap.Logger) (*Recorder, error) {
	return NewWithMeter(log, otel.Meter(scope))
}

func NewWithMeter(log *zap.Logger, meter metric.Meter) (*Recorder, error) {
	r := &Recorder{log: log.Named("telemetry")}
	var err error
	if r.frames, err = meter.Int64Counter("monopoly.client.frames",
		metric.WithDescription("Socket frames by direction and type.")); err != nil {
		return nil, err
	}
	if r.dropped, err = meter.Int64Counter("monopoly.client.dropped",
		metric.WithDescription("Messages discarded, by reason.")); err != nil {
		return nil, err
	}
	if r.unknown, err = meter.Int64Counter("monopoly.client.unknown",
		metric.WithDescription("Frames with an unrecognized type.")); err != nil {
		return nil, err
	}
	if r.actions, err = meter.Int64Counter("monopoly.client.actions",
		metric.WithDescription("HTTP actions by name and outcome.")); err != nil {
		return nil, err
	}
	if r.reconnects, err = meter.Int64Counter("monopoly.client.reconnects"); err != nil {
		return nil, err
	}
	return r, nil
}

// Sent and Received mirror every frame into the debug log.
func (r *Recorder) Sent(ctx context.Context, tag string, data []byte) {
	r.sent.Add(1)
	r.frames.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", "out"), attribute.String("type", tag)))
	r.log.Debug("→", zap.String("type", tag), zap.ByteString("frame", data))
}

func (r *Recorder) Received(ctx context.Context, tag string, data []byte) {
	r.received.Add(1)
	r.frames.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", "in"), attribute.String("type", tag)))
	r.log.Debug("←", zap.String("type", tag), zap.ByteString("frame", data))
}

func (r *Recorder) Dropped(ctx context.Context, reason string, fields ...zap.Field) {
	r.drops.Add(1)
	r.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	r.log.Debug("dropped", append(fields, zap.String("reason", reason))...)
}

// Unknown keeps the raw frame in the log for diagnosis.
func (r *Recorder) Unknown(ctx context.Context, tag string, raw []byte) {
	r.unknowns.Add(1)
	r.unknown.Add(ctx, 1, metric.WithAttributes(attribute.String("type", tag)))
	r.log.Info("unrecognized frame", zap.String("type", tag), zap.ByteString("raw", raw))
}

func (r *Recorder) Action(ctx context.Context, name string, err error) {
	r.acts.Add(1)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		r.failures.Add(1)
		r.log.Warn("action failed", zap.String("action", name), zap.Error(err))
	}
	r.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", name), attribute.String("outcome", outcome)))
}

func (r *Recorder) Reconnect(ctx context.Context, attempt int, delay time.Duration) {
	r.redials.Add(1)
	r.reconnects.Add(ctx, 1)
	r.log.Info("reconnecting", zap.Int("attempt", attempt), zap.Duration("delay", delay))
}

func (r *Recorder) Counts() Counts {
	return Counts{
		Sent:       r.sent.Load(),
		Received:   r.received.Load(),
		Dropped:    r.drops.Load(),
		Unknown:    r.unknowns.Load(),
		Actions:    r.acts.Load(),
		Failures:   r.failures.Load(),
		Reconnects: r.redials.Load(),
	}
}
