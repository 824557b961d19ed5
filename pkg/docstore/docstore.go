// Package docstore is the persistence boundary of the admin API: a key-value store of JSON documents grouped into
// collections. Three backends share the same contract: an in-process map, Redis and PostgreSQL JSONB.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no document exists at the requested key.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrConflict reports that Update observed a concurrent write and committed nothing.
	ErrConflict = errors.New("docstore: concurrent write conflict")
)

// UpdateFunc receives the stored document (nil when exists is false) and returns the replacement body.
// Returning an error aborts the update without writing.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Document is one stored record.
type Document struct {
	Key  string
	Body json.RawMessage
}

// Store is implemented by every backend.
type Store interface {
	// Get decodes the document at collection/key into dest or returns ErrNotFound.
	Get(ctx context.Context, collection, key string, dest interface{}) error
	// Put overwrites the whole document. Concurrent writers race and the last one wins.
	Put(ctx context.Context, collection, key string, value interface{}) error
	// List returns every document of collection ordered by key.
	List(ctx context.Context, collection string) ([]Document, error)
	// FindOne decodes the first document, by key order, whose top-level field equals value.
	FindOne(ctx context.Context, collection, field, value string, dest interface{}) error
	// ReplaceAll swaps the entire collection for docs.
	ReplaceAll(ctx context.Context, collection string, docs map[string]interface{}) error
	// Update performs an atomic read-modify-write of a single document.
	Update(ctx context.Context, collection, key string, fn UpdateFunc) error
	// Backend names the implementation for logs and metrics.
	Backend() string
	Close() error
}

// DecodeAll unmarshals each document body into a T, preserving order.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc.Body, &v); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

func decode(body []byte, dest interface{}) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// fieldEquals mirrors the PostgreSQL ->> operator: string fields compare by value, other fields by their JSON text.
func fieldEquals(body []byte, field, value string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	raw, ok := fields[field]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == value
	}
	return string(raw) == value
}
