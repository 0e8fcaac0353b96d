package docstore

import (
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const maxConflictRetries = 5

// Store is a document store on top of BadgerDB.
// Every key is the document path, every value a protobuf encoded field set.
type Store struct {
	db    *badger.DB
	log   *slog.Logger
	clock func() time.Time
}

type Option func(*Store)

// WithClock replaces the clock used for ServerTimestamp.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func NewStore(db *badger.DB, log *slog.Logger, opts ...Option) *Store {
	s := &Store{db: db, log: log, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns errors.ErrDocumentNotFound when nothing is stored under path.
func (s *Store) Get(ctx context.Context, path string) (Document, error) {
	if err := validatePath(path); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var doc Document
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := s.read(txn, path)
		doc = found
		return err
	})
	return doc, err
}

// Set overwrites the whole document.
func (s *Store) Set(ctx context.Context, path string, fields map[string]any) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(fields, s.clock())
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
}

// Merge overwrites the listed fields of an existing document and keeps the others.
// There is no version check, the last committed merge wins.
func (s *Store) Merge(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.retryOnConflict(ctx, func(txn *badger.Txn) error {
		current, err := s.read(txn, path)
		if err != nil {
			return err
		}
		merged := make(map[string]any, len(current.Fields)+len(fields))
		for name, value := range current.Fields {
			merged[name] = value
		}
		for name, value := range fields {
			merged[name] = value
		}
		data, err := encode(merged, s.clock())
		if err != nil {
			return err
		}
		return txn.Set([]byte(path), data)
	})
}

// Create writes the document only if path is free.
// It returns the stored document and whether this call created it.
// Racing creators converge: the losers read back the winner's document.
func (s *Store) Create(ctx context.Context, path string, fields map[string]any) (Document, bool, error) {
	if err := validatePath(path); err != nil {
		return Document{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	var (
		doc     Document
		created bool
	)
	err := s.retryOnConflict(ctx, func(txn *badger.Txn) error {
		existing, err := s.read(txn, path)
		switch {
		case err == nil:
			doc, created = existing, false
			return nil
		case !stderrors.Is(err, errors.ErrDocumentNotFound):
			return err
		}
		data, err := encode(fields, s.clock())
		if err != nil {
			return err
		}
		decoded, err := decode(data)
		if err != nil {
			return err
		}
		doc, created = newDocument(path, decoded), true
		return txn.Set([]byte(path), data)
	})
	return doc, created, err
}

// Add stores a new child of collection under a store assigned, time ordered id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	if err := validatePath(collection); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Document{}, err
	}
	path := Doc(collection, id.String())
	data, err := encode(fields, s.clock())
	if err != nil {
		return Document{}, err
	}
	decoded, err := decode(data)
	if err != nil {
		return Document{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
	if err != nil {
		return Document{}, err
	}
	return newDocument(path, decoded), nil
}

// Query runs q once against the current state.
func (s *Store) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []Document
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := s.scan(txn, q)
		docs = found
		return err
	})
	if err != nil {
		return nil, err
	}
	if q.limit > 0 && len(docs) > q.limit {
		docs = docs[:q.limit]
	}
	return docs, nil
}

func (s *Store) read(txn *badger.Txn, path string) (Document, error) {
	item, err := txn.Get([]byte(path))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return Document{}, fmt.Errorf("%w: %s", errors.ErrDocumentNotFound, path)
	}
	if err != nil {
		return Document{}, err
	}
	var fields map[string]any
	err = item.Value(func(val []byte) error {
		fields, err = decode(val)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return newDocument(path, fields), nil
}

// scan collects the matching children of the query collection, sorted.
func (s *Store) scan(txn *badger.Txn, q Query) ([]Document, error) {
	prefix := []byte(q.collection + "/")
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()

	var docs []Document
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		path := string(item.KeyCopy(nil))
		if !isChild(q.collection, path) {
			continue
		}
		err := item.Value(func(val []byte) error {
			fields, err := decode(val)
			if err != nil {
				return err
			}
			if doc := newDocument(path, fields); q.matches(doc) {
				docs = append(docs, doc)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	q.sort(docs)
	return docs, nil
}

func (s *Store) retryOnConflict(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Transaction conflict, retrying", "attempt", attempt+1)
	}
	return err
}
