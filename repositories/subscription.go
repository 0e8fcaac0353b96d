package repositories

import (
	"chat-sync/docstore"
	"chat-sync/domain/event"
	"context"
)

// Subscription is a typed live query. The first batch is the full snapshot.
// Close must be called on every exit path; it is idempotent.
type Subscription[T any] struct {
	changes chan event.Batch[T]
	watch   *docstore.Watch
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *Subscription[T]) Changes() <-chan event.Batch[T] { return s.changes }

func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Err reports why the stream ended when it was not closed by its owner.
func (s *Subscription[T]) Err() error { return s.watch.Err() }

// subscribe maps raw document changes into typed batches.
func subscribe[T any](ctx context.Context, watch *docstore.Watch, toEntity func(docstore.Document) T) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		changes: make(chan event.Batch[T], 1),
		watch:   watch,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(sub.done)
		defer close(sub.changes)
		defer watch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case changes, ok := <-watch.Changes():
				if !ok {
					return
				}
				batch := make(event.Batch[T], 0, len(changes))
				for _, change := range changes {
					batch = append(batch, event.Change[T]{
						Type:  change.Type,
						Key:   change.Doc.ID,
						Value: toEntity(change.Doc),
					})
				}
				select {
				case sub.changes <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return sub
}
