// Package search ranks secret records against a free-text query using an
// approximate string similarity.
//
// The index keeps no precomputed structure: every query scores every record,
// which is fine for the few hundred entries a personal store holds.
package search

import (
	"cmp"
	"slices"

	"github.com/e-XpertSolutions/go-secret/secret"
)

// A Field selects the text of a record a query is compared with.
type Field func(secret.Record) string

// KeyField compares queries with record keys only.
func KeyField(r secret.Record) string {
	return r.Key
}

// FullTextField compares queries with the key and the value of records.
func FullTextField(r secret.Record) string {
	return r.Key + " " + r.Value
}

// Index ranks a snapshot of records.
type Index struct {
	records []secret.Record
}

// NewIndex returns an index over records. Positions returned by the index are
// offsets into records.
func NewIndex(records []secret.Record) *Index {
	return &Index{records: records}
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	return len(x.records)
}

// Rank returns the positions of at most limit records, best match first.
// Records with equal scores keep their relative order.
func (x *Index) Rank(query string, field Field, limit int) []secret.Position {
	if limit <= 0 || len(x.records) == 0 {
		return nil
	}
	type scored struct {
		pos   secret.Position
		score float64
	}
	scores := make([]scored, len(x.records))
	for i, r := range x.records {
		scores[i] = scored{pos: secret.Position(i), score: Ratio(query, field(r))}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]secret.Position, min(limit, len(scores)))
	for i := range out {
		out[i] = scores[i].pos
	}
	return out
}

// FindKey ranks records by key.
func (x *Index) FindKey(query string, limit int) []secret.Position {
	return x.Rank(query, KeyField, limit)
}

// FindFullText ranks records by key and value.
func (x *Index) FindFullText(query string, limit int) []secret.Position {
	return x.Rank(query, FullTextField, limit)
}
