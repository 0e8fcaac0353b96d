// Package event holds the diff vocabulary of live subscriptions.
package event

type ChangeType int

const (
	Added ChangeType = iota + 1
	Modified
	Removed
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change carries the full snapshot of one entity and its key.
// Value is the last known snapshot for Removed changes.
type Change[T any] struct {
	Type  ChangeType
	Key   string
	Value T
}

// Batch is the set of changes delivered together by one store notification.
type Batch[T any] []Change[T]

func Add[T any](key string, value T) Change[T] {
	return Change[T]{Type: Added, Key: key, Value: value}
}

func Modify[T any](key string, value T) Change[T] {
	return Change[T]{Type: Modified, Key: key, Value: value}
}

func Remove[T any](key string, value T) Change[T] {
	return Change[T]{Type: Removed, Key: key, Value: value}
}
