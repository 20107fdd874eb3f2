package sink

import (
	"context"

	"feewatch/internal/model"
	"go.uber.org/zap"
)

type LogProducer struct {
	Log *zap.Logger
}

func NewLogProducer(log *zap.Logger) *LogProducer {
	return &LogProducer{Log: log}
}

func (p *LogProducer) Publish(ctx context.Context, ev *model.CycleEvent) error {
	fields := []zap.Field{
		zap.String("feed", ev.Feed.String()),
		zap.String("cycle_id", ev.CycleID),
		zap.String("status", string(ev.Status)),
		zap.Duration("duration", ev.Duration),
	}

	switch ev.Status {
	case model.CycleOK, model.CyclePartial:
		fields = append(fields,
			zap.Int("records", ev.Records),
			zap.Int("added", ev.Added),
			zap.Int("replaced", ev.Replaced),
			zap.Int("series_length", ev.SeriesLength),
		)
		for _, c := range ev.Conflicts {
			p.Log.Warn("refused to overwrite immutable block",
				zap.String("feed", ev.Feed.String()),
				zap.String("cycle_id", ev.CycleID),
				zap.Uint64("block", c.Block),
				zap.Error(c),
			)
		}
		if ev.Status == model.CyclePartial {
			p.Log.Warn("cycle merged a partial batch", append(fields, zap.Error(ev.Err))...)
			return nil
		}
		p.Log.Debug("cycle merged", fields...)
	case model.CycleFailed:
		p.Log.Error("cycle failed", append(fields, zap.Error(ev.Err))...)
	case model.CycleSkipped:
		p.Log.Debug("tick skipped, previous cycle still in flight", fields...)
	case model.CycleDiscarded:
		p.Log.Info("feed stopped, discarding fetched batch", fields...)
	}
	return nil
}
