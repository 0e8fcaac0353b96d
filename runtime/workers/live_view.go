package workers

import (
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/projection"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"log/slog"
)

// Frame is the full materialized view after one batch, head first.
type Frame[T any] struct {
	Kind   string            `json:"kind"`
	Items  []T               `json:"items"`
	Update projection.Update `json:"update"`
}

type SubscribeFunc[T any] func(ctx context.Context) (*repositories.Subscription[T], error)

type PublishFunc[T any] func(ctx context.Context, frame Frame[T]) error

// LiveView keeps a timeline in sync with one subscription and publishes every change.
// Each run opens a fresh subscription and rebuilds the timeline from its snapshot,
// so a supervisor restart resynchronizes the view.
type LiveView[T any] struct {
	kind        string
	subscribe   SubscribeFunc[T]
	publish     PublishFunc[T]
	newTimeline func() *projection.Timeline[T]
	log         *slog.Logger
}

func NewLiveView[T any](kind string, subscribe SubscribeFunc[T], publish PublishFunc[T],
	newTimeline func() *projection.Timeline[T], log *slog.Logger) *LiveView[T] {
	return &LiveView[T]{
		kind:        kind,
		subscribe:   subscribe,
		publish:     publish,
		newTimeline: newTimeline,
		log:         log,
	}
}

// Run returns nil when the view should not be restarted: ctx done, sink gone or access refused.
func (v *LiveView[T]) Run(ctx context.Context) error {
	sub, err := v.subscribe(ctx)
	if err != nil {
		if permanent(err) {
			v.log.Debug("Live view refused", "kind", v.kind, "error", err)
			return nil
		}
		return err
	}
	defer sub.Close()

	gauge := observability.ActiveLiveViews.WithLabelValues(v.kind)
	gauge.Inc()
	defer gauge.Dec()

	timeline := v.newTimeline()
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-sub.Changes():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				if err := sub.Err(); err != nil {
					return err
				}
				return errors.ErrWatchClosed
			}
			update := timeline.Apply(batch)
			frame := Frame[T]{Kind: v.kind, Items: timeline.Items(), Update: update}
			if err := v.publish(ctx, frame); err != nil {
				v.log.Debug("Live view sink closed", "kind", v.kind, "error", err)
				return nil
			}
		}
	}
}

func permanent(err error) bool {
	return stderrors.Is(err, errors.ErrValidation) ||
		stderrors.Is(err, errors.ErrNotParticipant) ||
		stderrors.Is(err, errors.ErrNotLoggedIn)
}
