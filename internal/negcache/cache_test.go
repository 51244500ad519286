package negcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []Entry
	saveCtx []error
	preload []Entry
	loadErr error
	saveErr error
	cleared bool
}

func (f *fakeStore) Load(ctx context.Context) ([]Entry, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.preload, nil
}

func (f *fakeStore) Save(ctx context.Context, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, e)
	f.saveCtx = append(f.saveCtx, ctx.Err())
	return f.saveErr
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.cleared = true
	return nil
}

func TestCache_AddContains(t *testing.T) {
	c := New(nil, testLogger())
	ctx := context.Background()

	if c.Contains("abc123xyz00") {
		t.Fatal("empty cache should not contain id")
	}
	if !c.Add(ctx, "abc123xyz00", domain.ReasonNotFound) {
		t.Error("first Add should report insertion")
	}
	if !c.Contains("abc123xyz00") {
		t.Error("Contains() = false after Add")
	}
	if c.Add(ctx, "abc123xyz00", domain.ReasonPrivate) {
		t.Error("second Add should be a no-op")
	}

	e, ok := c.Get("abc123xyz00")
	if !ok || e.Reason != domain.ReasonNotFound {
		t.Errorf("Get() = %+v, %v; want first reason kept", e, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_WritesThroughToStore(t *testing.T) {
	store := &fakeStore{}
	c := New(store, testLogger())
	ctx := context.Background()

	c.Add(ctx, "vid_one_0001", domain.ReasonEmbedForbidden)
	c.Add(ctx, "vid_one_0001", domain.ReasonEmbedForbidden)
	c.Add(ctx, "vid_two_0002", domain.ReasonProbeFailed)

	if len(store.saved) != 2 {
		t.Fatalf("store saved %d entries, want 2", len(store.saved))
	}
}

func TestCache_WriteThroughSurvivesCancelledCaller(t *testing.T) {
	store := &fakeStore{}
	c := New(store, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.Add(ctx, "dQw4w9WgXcQ", domain.ReasonPrivate)

	if len(store.saved) != 1 {
		t.Fatalf("saved = %d entries, want 1", len(store.saved))
	}
	if err := store.saveCtx[0]; err != nil {
		t.Errorf("Save ctx err = %v, want live context", err)
	}
}

func TestCache_StoreFailureKeepsMemoryEntry(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection refused")}
	c := New(store, testLogger())

	c.Add(context.Background(), "vid_one_0001", domain.ReasonNotFound)
	if !c.Contains("vid_one_0001") {
		t.Error("entry should survive a persistence failure")
	}
}

func TestCache_Warm(t *testing.T) {
	store := &fakeStore{preload: []Entry{
		{VideoID: "persisted_01", Reason: domain.ReasonPrivate, AddedAt: time.Now()},
		{VideoID: "persisted_02", Reason: domain.ReasonNotFound, AddedAt: time.Now()},
	}}
	c := New(store, testLogger())
	ctx := context.Background()
	c.Add(ctx, "persisted_01", domain.ReasonRejected)

	n, err := c.Warm(ctx)
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Warm() loaded %d, want 1", n)
	}
	if e, _ := c.Get("persisted_01"); e.Reason != domain.ReasonRejected {
		t.Errorf("Warm overwrote existing entry: %+v", e)
	}
	if !c.Contains("persisted_02") {
		t.Error("persisted_02 should be loaded")
	}
}

func TestCache_WarmError(t *testing.T) {
	c := New(&fakeStore{loadErr: errors.New("boom")}, testLogger())
	if _, err := c.Warm(context.Background()); err == nil {
		t.Error("Warm() should surface load errors")
	}

	mem := New(nil, testLogger())
	if n, err := mem.Warm(context.Background()); n != 0 || err != nil {
		t.Errorf("Warm() without store = %d, %v", n, err)
	}
}

func TestCache_EntriesAndClear(t *testing.T) {
	store := &fakeStore{}
	c := New(store, testLogger())
	ctx := context.Background()

	c.Add(ctx, "first_000001", domain.ReasonNotFound)
	time.Sleep(2 * time.Millisecond)
	c.Add(ctx, "second_00002", domain.ReasonPrivate)

	entries := c.Entries()
	if len(entries) != 2 || entries[0].VideoID != "first_000001" {
		t.Errorf("Entries() = %+v", entries)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 || c.Contains("first_000001") {
		t.Error("Clear() left entries behind")
	}
	if !store.cleared {
		t.Error("Clear() should clear the store")
	}
}

func TestCache_ConcurrentAdd(t *testing.T) {
	c := New(nil, testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Add(ctx, "shared_vid01", domain.ReasonNotFound) {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if inserted != 1 {
		t.Errorf("%d goroutines inserted, want exactly 1", inserted)
	}
}
