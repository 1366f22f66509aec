package telemetry

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogSink writes each record as one "search_telemetry" log line.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, rec Record) {
	s.logger.Info("search_telemetry",
		zap.String("request_id", rec.RequestID),
		zap.String("query_hash", rec.QueryHash),
		zap.String("mode", string(rec.Mode)),
		zap.Bool("cache_hit", rec.CacheHit),
		zap.Bool("shared", rec.Shared),
		zap.Bool("coalesced", rec.Coalesced),
		zap.String("satisfied_by", string(rec.SatisfiedBy)),
		zap.String("final_state", rec.FinalState),
		zap.Array("tiers", tierArray(rec.Tiers)),
		zap.Int("result_count", rec.ResultCount),
		zap.Int("total", rec.Total),
		zap.Int64("took_ms", rec.TookMs),
	)
}

type tierArray []TierRecord

func (a tierArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, t := range a {
		if err := enc.AppendObject(t); err != nil {
			return err //nolint:wrapcheck // encoder error
		}
	}
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (t TierRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("tier", string(t.Tier))
	enc.AddInt64("latency_ms", t.LatencyMs)
	enc.AddBool("succeeded", t.Succeeded)
	if t.ErrorKind != "" {
		enc.AddString("error_kind", t.ErrorKind)
	}
	enc.AddInt("result_count", t.ResultCount)
	return nil
}
