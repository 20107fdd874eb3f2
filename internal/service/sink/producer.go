package sink

import (
	"context"
	"errors"

	"feewatch/internal/model"
)

// Producer receives the outcome of every feed cycle.
type Producer interface {
	Publish(ctx context.Context, ev *model.CycleEvent) error
}

// Multi publishes to every producer and joins their errors.
type Multi []Producer

func (m Multi) Publish(ctx context.Context, ev *model.CycleEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
