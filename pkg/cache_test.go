package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type greeting struct {
	Text string
}

func TestInsertThenGetRoundTrips(t *testing.T) {
	c, err := New[string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Insert(c, "k", greeting{Text: "hello"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, err := Get[string, greeting](c, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Text != "hello" {
		t.Fatalf("v.Text = %q, want %q", v.Text, "hello")
	}
}

func TestGetMissingKeyReturnsErrKeyNotFound(t *testing.T) {
	c, err := New[string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = Get[string, greeting](c, "absent")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestDeleteThenGetReturnsErrKeyNotFound(t *testing.T) {
	c, err := New[string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = Insert(c, "k", greeting{Text: "hi"})
	if !c.Delete("k") {
		t.Fatal("Delete should report true for a present key")
	}
	_, err = Get[string, greeting](c, "k")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestDeleteAbsentKeyReturnsFalseAndLeavesStateUnchanged(t *testing.T) {
	c, err := New[string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = Insert(c, "present", greeting{Text: "x"})
	before := c.Len()
	if c.Delete("absent") {
		t.Fatal("Delete on an absent key should return false")
	}
	if c.Len() != before {
		t.Fatalf("Len changed from %d to %d after deleting an absent key", before, c.Len())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	c, _ := New[string](1 << 20)
	_ = Insert(c, "k", greeting{Text: "x"})
	if !c.Delete("k") {
		t.Fatal("first Delete should return true")
	}
	if c.Delete("k") {
		t.Fatal("second Delete should return false")
	}
}

func TestGetOrLoadLoadsOnceAndCaches(t *testing.T) {
	c, _ := New[string](1 << 20)
	var calls atomic.Int64
	loader := func(ctx context.Context, key string) (greeting, error) {
		calls.Add(1)
		return greeting{Text: "loaded:" + key}, nil
	}
	v, err := GetOrLoad(context.Background(), c, "k", loader)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if v.Text != "loaded:k" {
		t.Fatalf("v.Text = %q, want %q", v.Text, "loaded:k")
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}

	// Second call should be satisfied from the cache, not the loader.
	v2, err := GetOrLoad(context.Background(), c, "k", loader)
	if err != nil {
		t.Fatalf("GetOrLoad (cached): %v", err)
	}
	if v2.Text != "loaded:k" {
		t.Fatalf("v2.Text = %q, want %q", v2.Text, "loaded:k")
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times after cache hit, want 1", calls.Load())
	}
}

func TestGetOrLoadCollapsesConcurrentCallers(t *testing.T) {
	c, _ := New[string](1 << 20)
	var calls atomic.Int64
	start := make(chan struct{})
	loader := func(ctx context.Context, key string) (greeting, error) {
		<-start
		calls.Add(1)
		return greeting{Text: "v"}, nil
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = GetOrLoad(context.Background(), c, "shared-key", loader)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("loader invoked %d times across %d concurrent callers, want 1", calls.Load(), n)
	}
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	c, _ := New[string](1 << 20)
	wantErr := errors.New("upstream failure")
	loader := func(ctx context.Context, key string) (greeting, error) {
		return greeting{}, wantErr
	}
	_, err := GetOrLoad(context.Background(), c, "k", loader)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if _, getErr := Get[string, greeting](c, "k"); !errors.Is(getErr, ErrKeyNotFound) {
		t.Fatal("a failed load must not leave an entry behind")
	}
}

func TestLenReflectsLiveEntries(t *testing.T) {
	c, _ := New[string](1 << 20)
	if c.Len() != 0 {
		t.Fatalf("Len() on empty cache = %d, want 0", c.Len())
	}
	_ = Insert(c, "a", greeting{Text: "1"})
	_ = Insert(c, "b", greeting{Text: "2"})
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	c.Delete("a")
	if c.Len() != 1 {
		t.Fatalf("Len() after delete = %d, want 1", c.Len())
	}
}

func TestSnapshotReportsPerShardQueueState(t *testing.T) {
	c, err := New[string](1<<20, WithShards[string](4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 50; i++ {
		_ = Insert(c, string(rune('a'+i%26))+string(rune('A'+i%4)), greeting{Text: "v"})
	}
	snap := c.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("len(snap) = %d, want 4", len(snap))
	}
	for i, s := range snap {
		if s.Small.Bytes > s.Small.Threshold {
			t.Errorf("shard %d: small bytes %d exceeds threshold %d", i, s.Small.Bytes, s.Small.Threshold)
		}
		if s.Main.Bytes > s.Main.Threshold {
			t.Errorf("shard %d: main bytes %d exceeds threshold %d", i, s.Main.Bytes, s.Main.Threshold)
		}
	}
}

func TestNewRejectsNonPositiveBudget(t *testing.T) {
	if _, err := New[string](0); !errors.Is(err, errInvalidBudget) {
		t.Fatalf("err = %v, want errInvalidBudget", err)
	}
	if _, err := New[string](-1); !errors.Is(err, errInvalidBudget) {
		t.Fatalf("err = %v, want errInvalidBudget", err)
	}
}

func TestNewRejectsNonPowerOfTwoShards(t *testing.T) {
	if _, err := New[string](1<<20, WithShards[string](3)); !errors.Is(err, errInvalidShards) {
		t.Fatalf("err = %v, want errInvalidShards", err)
	}
}

func TestConcurrentAccessAcrossManyGoroutines(t *testing.T) {
	c, _ := New[int](4<<20, WithShards[int](8))
	var wg sync.WaitGroup
	const n = 32
	wg.Add(n)
	for g := 0; g < n; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				key := g*2000 + i
				_ = Insert(c, key, greeting{Text: "x"})
				_, _ = Get[int, greeting](c, key)
			}
		}(g)
	}
	wg.Wait()
	// No assertion beyond "did not race or panic": correctness under
	// concurrency is covered at the shard level by internal/s3fifo's
	// own invariant checks, run single-threaded there.
}
