// Package store abstracts the document database behind a small interface so
// request handlers and the dispatcher never see a concrete driver.
package store

import (
	"context"
	"errors"
)

// Collection names used by the service.
const (
	CollectionUsers         = "users"
	CollectionNotifications = "notifications"
	CollectionBloodRequests = "blood_requests"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a schemaless record. The "id" key always holds the document id
// on reads.
type Document map[string]interface{}

// Filter ops supported by Query.
const (
	OpEqual = "=="
	OpIn    = "in"
)

// Filter is one predicate of a query. For OpIn, Value must be a []string.
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Store is the document database contract.
type Store interface {
	// Get fetches a document by id, ErrNotFound if missing.
	Get(ctx context.Context, collection, id string) (Document, error)

	// GetByIDs fetches many documents in one call. Missing ids are simply
	// absent from the result, not an error.
	GetByIDs(ctx context.Context, collection string, ids []string) (map[string]Document, error)

	// Add inserts a document and returns its id. If doc carries an "id"
	// key it is used, otherwise one is generated.
	Add(ctx context.Context, collection string, doc Document) (string, error)

	// Update applies a partial field update to an existing document,
	// ErrNotFound if missing.
	Update(ctx context.Context, collection, id string, fields Document) error

	// Query returns the documents matching all filters, ordered by id.
	Query(ctx context.Context, collection string, filters []Filter) ([]Document, error)
}

// StringField reads a string field from a document, empty if absent or of
// another type.
func StringField(doc Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

// BoolField reads a bool field from a document, false if absent.
func BoolField(doc Document, key string) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return false
}
