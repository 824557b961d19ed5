package docstore

import (
	"context"
	"time"
)

// Observer records the outcome of each store operation.
type Observer interface {
	ObserveStoreOperation(backend, operation string, duration time.Duration, err error)
}

type instrumented struct {
	Store
	observer Observer
}

// Instrument reports every call on s to observer. A nil observer returns s unchanged.
func Instrument(s Store, observer Observer) Store {
	if observer == nil {
		return s
	}
	return &instrumented{Store: s, observer: observer}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.observer.ObserveStoreOperation(i.Store.Backend(), op, time.Since(start), err)
}

func (i *instrumented) Get(ctx context.Context, collection, key string, dest interface{}) error {
	start := time.Now()
	err := i.Store.Get(ctx, collection, key, dest)
	i.observe("get", start, err)
	return err
}

func (i *instrumented) Put(ctx context.Context, collection, key string, value interface{}) error {
	start := time.Now()
	err := i.Store.Put(ctx, collection, key, value)
	i.observe("put", start, err)
	return err
}

func (i *instrumented) List(ctx context.Context, collection string) ([]Document, error) {
	start := time.Now()
	docs, err := i.Store.List(ctx, collection)
	i.observe("list", start, err)
	return docs, err
}

func (i *instrumented) FindOne(ctx context.Context, collection, field, value string, dest interface{}) error {
	start := time.Now()
	err := i.Store.FindOne(ctx, collection, field, value, dest)
	i.observe("find_one", start, err)
	return err
}

func (i *instrumented) ReplaceAll(ctx context.Context, collection string, docs map[string]interface{}) error {
	start := time.Now()
	err := i.Store.ReplaceAll(ctx, collection, docs)
	i.observe("replace_all", start, err)
	return err
}

func (i *instrumented) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	start := time.Now()
	err := i.Store.Update(ctx, collection, key, fn)
	i.observe("update", start, err)
	return err
}
