package docstore

import (
	"cmp"
	"slices"
	"strings"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query selects direct children of one collection.
// It is a value type, every builder method returns a copy.
type Query struct {
	collection  string
	arrayField  string
	arrayValue  string
	prefixField string
	prefixValue string
	orderField  string
	direction   Direction
	limit       int
}

func Collection(path string) Query {
	return Query{collection: path}
}

func (q Query) Path() string { return q.collection }

// WhereArrayContains keeps documents whose list field holds value.
func (q Query) WhereArrayContains(field, value string) Query {
	q.arrayField, q.arrayValue = field, value
	return q
}

// WherePrefix keeps documents whose text field starts with prefix.
func (q Query) WherePrefix(field, prefix string) Query {
	q.prefixField, q.prefixValue = field, prefix
	return q
}

// OrderBy sorts on field. Ties are broken on the document id in the same direction,
// ids assigned by Add grow with insertion time.
func (q Query) OrderBy(field string, direction Direction) Query {
	q.orderField, q.direction = field, direction
	return q
}

// Limit caps one-shot queries. Watches ignore it.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

func (q Query) matches(doc Document) bool {
	if !isChild(q.collection, doc.Path) {
		return false
	}
	if q.arrayField != "" && !slices.Contains(doc.Strings(q.arrayField), q.arrayValue) {
		return false
	}
	if q.prefixField != "" && !strings.HasPrefix(doc.String(q.prefixField), q.prefixValue) {
		return false
	}
	return true
}

func (q Query) compare(a, b Document) int {
	c := 0
	if q.orderField != "" {
		c = compareValues(a.Fields[q.orderField], b.Fields[q.orderField])
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if q.direction == Desc {
		return -c
	}
	return c
}

func (q Query) sort(docs []Document) {
	slices.SortFunc(docs, q.compare)
}

// compareValues orders missing < bool < number < string.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch va := a.(type) {
	case bool:
		vb := b.(bool)
		switch {
		case va == vb:
			return 0
		case !va:
			return -1
		}
		return 1
	case float64:
		return cmp.Compare(va, b.(float64))
	case string:
		return strings.Compare(va, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 0
}
