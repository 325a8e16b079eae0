package vectordb

import (
	"context"
	"errors"
)

// ErrIndex marks a storage failure on the index. Write failures are fatal
// to that upsert; the retriever degrades read failures to an empty result
// set instead of failing the query.
var ErrIndex = errors.New("index failure")

// Store is the collection-scoped vector index. Implementations must be safe
// for concurrent readers overlapping writers; writes to a collection are
// serialized internally.
type Store interface {
	// Upsert writes records to the collection, overwriting by record ID.
	Upsert(ctx context.Context, records []Record) error

	// Search returns up to k records ranked by similarity to the query
	// vector, highest first. An empty or absent collection yields an empty
	// result, never an error.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// Count reports how many records the collection holds.
	Count() int

	// Persist writes the collection to its durable location.
	Persist(ctx context.Context) error

	// Load restores the collection from its durable location. A location
	// that does not exist yet loads as an empty collection.
	Load(ctx context.Context) error
}
