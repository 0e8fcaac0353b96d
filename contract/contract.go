//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain"
	"context"
	"io"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Generic workers keep their type parameters in the name.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IPushGateway delivers one message to one device.
type IPushGateway interface {
	Send(ctx context.Context, msg domain.PushMessage) error
}

// INotifier never reports delivery failures to its caller.
type INotifier interface {
	Notify(ctx context.Context, token, title, body string, data map[string]string)
}

type IObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// IRegistry tracks the live views opened by each user.
type IRegistry interface {
	Track(userID string, cancel context.CancelFunc) (release func())
	UnsubscribeAll(userID string) int
	Count(userID string) int
}
