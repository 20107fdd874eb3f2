package sink

import (
	"context"

	"feewatch/internal/metrics"
	"feewatch/internal/model"
)

type MetricsProducer struct{}

func (MetricsProducer) Publish(ctx context.Context, ev *model.CycleEvent) error {
	feed := ev.Feed.String()

	if ev.Status == model.CycleSkipped {
		metrics.TicksSkipped.WithLabelValues(feed).Inc()
		return nil
	}

	metrics.CyclesTotal.WithLabelValues(feed, string(ev.Status)).Inc()
	metrics.CycleDuration.WithLabelValues(feed).Observe(ev.Duration.Seconds())
	if ev.Status == model.CycleOK || ev.Status == model.CyclePartial {
		metrics.SeriesLength.WithLabelValues(feed).Set(float64(ev.SeriesLength))
		if n := len(ev.Conflicts); n > 0 {
			metrics.MergeConflicts.WithLabelValues(feed).Add(float64(n))
		}
	}
	return nil
}
