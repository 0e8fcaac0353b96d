package docstore

import (
	"bytes"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"
)

const (
	markerPrefix     = "_watch/"
	handshakeEvery   = 10 * time.Millisecond
	handshakeTimeout = 5 * time.Second
	watchBuffer      = 16
)

// Change is one entry of a watch diff. Doc holds the last known snapshot for Removed.
type Change struct {
	Type event.ChangeType
	Doc  Document
}

// Watch is a live query. The first batch is the full snapshot, every later
// batch holds the changes of one committed write. It stays open until Close
// or until its context is done; it is never restarted, watch again instead.
type Watch struct {
	changes chan []Change
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

func (w *Watch) Changes() <-chan []Change { return w.changes }

// Close unsubscribes and waits for the delivery goroutine to stop. Safe to call twice.
func (w *Watch) Close() {
	w.cancel()
	<-w.done
}

// Err is set when the watch ended for another reason than Close or its context.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watch) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// inbox decouples the badger publisher from slow consumers.
// The subscription callback must never block, otherwise every writer would.
type inbox struct {
	mu     sync.Mutex
	items  []*pb.KV
	notify chan struct{}
}

func newInbox() *inbox {
	return &inbox{notify: make(chan struct{}, 1)}
}

func (b *inbox) push(kvs []*pb.KV) {
	if len(kvs) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, kvs...)
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *inbox) drain() []*pb.KV {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

// Watch opens a live query.
//
// The badger subscription is opened first, then a marker key is written until
// the subscription echoes it back. Only then the snapshot is read, so no write
// can fall between snapshot and live tail. Writes already in the snapshot are
// dropped by comparing their commit version with the snapshot read timestamp.
func (s *Store) Watch(ctx context.Context, q Query) (*Watch, error) {
	if err := validatePath(q.collection); err != nil {
		return nil, err
	}
	watchCtx, cancel := context.WithCancel(ctx)
	w := &Watch{
		changes: make(chan []Change, watchBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	marker := []byte(markerPrefix + uuid.NewString())
	box := newInbox()
	subscribed := make(chan error, 1)

	go func() {
		subscribed <- s.db.Subscribe(watchCtx, func(list *badger.KVList) error {
			box.push(list.GetKv())
			return nil
		}, []pb.Match{
			{Prefix: []byte(q.collection + "/")},
			{Prefix: marker},
		})
	}()

	pending, err := s.awaitMarker(watchCtx, marker, box, subscribed)
	s.dropMarker(marker)
	if err != nil {
		cancel()
		<-subscribed
		close(w.done)
		close(w.changes)
		return nil, err
	}

	txn := s.db.NewTransaction(false)
	readTs := txn.ReadTs()
	snapshot, err := s.scan(txn, q)
	txn.Discard()
	if err != nil {
		cancel()
		<-subscribed
		close(w.done)
		close(w.changes)
		return nil, err
	}

	go s.deliver(watchCtx, w, q, readTs, snapshot, pending, box, subscribed)
	return w, nil
}

func (s *Store) dropMarker(marker []byte) {
	if err := s.db.Update(func(txn *badger.Txn) error { return txn.Delete(marker) }); err != nil {
		s.log.Debug("Watch marker not removed", "marker", string(marker), "error", err)
	}
}

// awaitMarker returns the entries received after the marker.
func (s *Store) awaitMarker(ctx context.Context, marker []byte, box *inbox, subscribed chan error) ([]*pb.KV, error) {
	ticker := time.NewTicker(handshakeEvery)
	defer ticker.Stop()
	timeout := time.NewTimer(handshakeTimeout)
	defer timeout.Stop()

	writeMarker := func() error {
		return s.db.Update(func(txn *badger.Txn) error { return txn.Set(marker, []byte{1}) })
	}
	if err := writeMarker(); err != nil {
		return nil, err
	}
	for {
		select {
		case <-box.notify:
			items := box.drain()
			for i, kv := range items {
				if bytes.Equal(kv.GetKey(), marker) {
					return items[i+1:], nil
				}
			}
		case <-ticker.C:
			if err := writeMarker(); err != nil {
				return nil, err
			}
		case err := <-subscribed:
			subscribed <- err
			if err == nil {
				err = errors.ErrWatchClosed
			}
			return nil, err
		case <-timeout.C:
			return nil, fmt.Errorf("watch %s: subscription handshake timed out", marker)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Store) deliver(ctx context.Context, w *Watch, q Query, readTs uint64,
	snapshot []Document, pending []*pb.KV, box *inbox, subscribed chan error) {
	defer close(w.done)
	defer close(w.changes)

	members := make(map[string]Document, len(snapshot))
	initial := make([]Change, 0, len(snapshot))
	for _, doc := range snapshot {
		members[doc.Path] = doc
		initial = append(initial, Change{Type: event.Added, Doc: doc})
	}

	send := func(batch []Change) bool {
		select {
		case w.changes <- batch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	apply := func(kvs []*pb.KV) bool {
		batch := s.diff(q, readTs, members, kvs)
		if len(batch) == 0 {
			return true
		}
		return send(batch)
	}

	if !send(initial) || !apply(pending) {
		<-subscribed
		return
	}
	for {
		select {
		case <-box.notify:
			if !apply(box.drain()) {
				<-subscribed
				return
			}
		case err := <-subscribed:
			if ctx.Err() != nil {
				return
			}
			if err == nil || stderrors.Is(err, context.Canceled) {
				err = errors.ErrWatchClosed
			}
			s.log.Warn("Watch ended", "collection", q.collection, "error", err)
			w.fail(err)
			return
		case <-ctx.Done():
			<-subscribed
			return
		}
	}
}

// diff folds raw committed entries into query changes and updates members.
func (s *Store) diff(q Query, readTs uint64, members map[string]Document, kvs []*pb.KV) []Change {
	var batch []Change
	for _, kv := range kvs {
		if bytes.HasPrefix(kv.GetKey(), []byte(markerPrefix)) {
			continue
		}
		if version := kv.GetVersion(); version != 0 && version <= readTs {
			continue
		}
		path := string(kv.GetKey())
		if !isChild(q.collection, path) {
			continue
		}
		previous, known := members[path]
		if len(kv.GetValue()) == 0 {
			if known {
				delete(members, path)
				batch = append(batch, Change{Type: event.Removed, Doc: previous})
			}
			continue
		}
		fields, err := decode(kv.GetValue())
		if err != nil {
			s.log.Error("Skipping undecodable document", "path", path, "error", err)
			continue
		}
		doc := newDocument(path, fields)
		switch matches := q.matches(doc); {
		case matches && known:
			members[path] = doc
			batch = append(batch, Change{Type: event.Modified, Doc: doc})
		case matches:
			members[path] = doc
			batch = append(batch, Change{Type: event.Added, Doc: doc})
		case known:
			delete(members, path)
			batch = append(batch, Change{Type: event.Removed, Doc: previous})
		}
	}
	return batch
}
