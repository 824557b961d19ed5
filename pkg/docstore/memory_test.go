package docstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Year    int    `json:"year"`
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	var out sample
	err := s.Get(context.Background(), "users", "1000", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePutListFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "users", "1001", sample{Name: "B", Contact: "0772", Year: 2026}))
	require.NoError(t, s.Put(ctx, "users", "1000", sample{Name: "A", Contact: "0771", Year: 2027}))

	docs, err := s.List(ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1000", docs[0].Key)

	decoded, err := DecodeAll[sample](docs)
	require.NoError(t, err)
	assert.Equal(t, "A", decoded[0].Name)

	var found sample
	require.NoError(t, s.FindOne(ctx, "users", "contact", "0772", &found))
	assert.Equal(t, "B", found.Name)

	require.NoError(t, s.FindOne(ctx, "users", "year", "2027", &found))
	assert.Equal(t, "A", found.Name)

	assert.ErrorIs(t, s.FindOne(ctx, "users", "contact", "nobody", &found), ErrNotFound)
}

func TestMemoryStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "courses", "old", sample{Name: "old"}))

	require.NoError(t, s.ReplaceAll(ctx, "courses", map[string]interface{}{"new": sample{Name: "new"}}))

	docs, err := s.List(ctx, "courses")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].Key)
}

func TestMemoryStoreUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	err := s.Update(ctx, "metadata", "counter", func([]byte, bool) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	var out map[string]int
	assert.ErrorIs(t, s.Get(ctx, "metadata", "counter", &out), ErrNotFound)
}

func TestMemoryStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "metadata", "n", func(cur []byte, exists bool) ([]byte, error) {
				n := 0
				if exists {
					n, _ = strconv.Atoi(string(cur))
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, s.Get(ctx, "metadata", "n", &n))
	assert.Equal(t, 50, n)
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingObserver) ObserveStoreOperation(backend, op string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, backend+":"+op)
}

func TestInstrumentReportsOperations(t *testing.T) {
	obs := &recordingObserver{}
	s := Instrument(NewMemoryStore(), obs)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "c", "k", sample{}))
	var out sample
	require.NoError(t, s.Get(ctx, "c", "k", &out))

	assert.Equal(t, []string{"memory:put", "memory:get"}, obs.ops)
	assert.Equal(t, "memory", s.Backend())
}
