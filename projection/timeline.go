// Package projection builds local views from live subscription diffs.
// Handles ordering and deduplication by key.
// Does not subscribe or talk to the UI directly.
package projection

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Entry is one materialized item of a timeline.
type Entry[T any] struct {
	Key   string
	Value T
}

// Update summarizes what one batch did to the view.
// NewHead is set when an entry added or modified in the batch became the head.
type Update struct {
	Added    int  `json:"added"`
	Modified int  `json:"modified"`
	Removed  int  `json:"removed"`
	NewHead  bool `json:"new_head"`
}

// Timeline mirrors an upstream ordered query: newest first by the upstream
// ordering field, ties broken by key, one entry per key.
type Timeline[T any] struct {
	mu      sync.RWMutex
	orderBy func(T) time.Time
	values  map[string]T
	entries []Entry[T]
}

func NewTimeline[T any](orderBy func(T) time.Time) *Timeline[T] {
	return &Timeline[T]{
		orderBy: orderBy,
		values:  make(map[string]T),
	}
}

// NewMessageTimeline orders by sentAt like MessageRepository.Subscribe.
func NewMessageTimeline() *Timeline[domain.Message] {
	return NewTimeline(func(m domain.Message) time.Time { return m.SentAt })
}

// NewRoomTimeline orders by lastMessageAt like RoomRepository.SubscribeForUser.
func NewRoomTimeline() *Timeline[domain.Room] {
	return NewTimeline(func(r domain.Room) time.Time { return r.LastMessageAt })
}

func (t *Timeline[T]) Apply(batch event.Batch[T]) Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous := t.headKey()
	var update Update
	upserted := make(map[string]bool, len(batch))
	for _, change := range batch {
		_, known := t.values[change.Key]
		switch change.Type {
		case event.Added, event.Modified:
			t.values[change.Key] = change.Value
			upserted[change.Key] = true
			if known {
				update.Modified++
			} else {
				update.Added++
			}
		case event.Removed:
			if known {
				delete(t.values, change.Key)
				delete(upserted, change.Key)
				update.Removed++
			}
		}
	}
	t.rebuild()
	current := t.headKey()
	// A head uncovered by a removal is not new.
	update.NewHead = current != "" && current != previous && upserted[current]
	return update
}

func (t *Timeline[T]) rebuild() {
	t.entries = lo.MapToSlice(t.values, func(key string, value T) Entry[T] {
		return Entry[T]{Key: key, Value: value}
	})
	slices.SortFunc(t.entries, func(a, b Entry[T]) int {
		if c := t.orderBy(b.Value).Compare(t.orderBy(a.Value)); c != 0 {
			return c
		}
		return cmp.Compare(b.Key, a.Key)
	})
}

func (t *Timeline[T]) headKey() string {
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[0].Key
}

// Items returns a copy of the values, head first.
func (t *Timeline[T]) Items() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Map(t.entries, func(e Entry[T], _ int) T { return e.Value })
}

func (t *Timeline[T]) Entries() []Entry[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.entries)
}

func (t *Timeline[T]) Head() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		var zero T
		return zero, false
	}
	return t.entries[0].Value, true
}

func (t *Timeline[T]) Get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.values[key]
	return value, ok
}

func (t *Timeline[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
