// Package docstore is the live document store the chat engine syncs through.
// Documents live under slash separated paths and are persisted in BadgerDB.
// Queries see the direct children of one collection and can be watched live.
package docstore

import (
	"chat-sync/errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	UsersCollection    = "users"
	RoomsCollection    = "chatrooms"
	MessagesCollection = "messages"
)

// Document is a decoded snapshot. Numbers come back as float64,
// lists as []any and timestamps as Unix microseconds.
type Document struct {
	Path   string
	ID     string
	Fields map[string]any
}

func newDocument(path string, fields map[string]any) Document {
	return Document{Path: path, ID: path[strings.LastIndex(path, "/")+1:], Fields: fields}
}

func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

func (d Document) Time(field string) time.Time {
	micros, ok := d.Fields[field].(float64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMicro(int64(micros)).UTC()
}

func (d Document) Strings(field string) []string {
	list, _ := d.Fields[field].([]any)
	return lo.FilterMap(list, func(item any, _ int) (string, bool) {
		s, ok := item.(string)
		return s, ok
	})
}

// Doc joins path segments: Doc("chatrooms", id, "messages") == "chatrooms/{id}/messages".
func Doc(segments ...string) string {
	return strings.Join(segments, "/")
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty document path", errors.ErrValidation)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			return fmt.Errorf("%w: invalid document path %q", errors.ErrValidation, path)
		}
	}
	return nil
}

// isChild reports whether path is a direct child of collection.
func isChild(collection, path string) bool {
	rest, ok := strings.CutPrefix(path, collection+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}
