package chanbuf

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	base "github.com/flowkit/boundedbuf"
)

func TestNewRejectsBadCapacity(t *testing.T) {
	if _, err := New[int](0); err == nil {
		t.Fatal("capacity 0: expected construction error")
	}
	b, err := New[int](3)
	if err != nil {
		t.Fatalf("capacity 3: unexpected error %v", err)
	}
	if b.Cap() != 3 {
		t.Fatalf("cap = %d want 3", b.Cap())
	}
}

func TestFIFO(t *testing.T) {
	b, _ := New[int](3)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := b.Put(ctx, i); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d want 3", b.Len())
	}
	for i := 1; i <= 3; i++ {
		v, err := b.Take(ctx)
		if err != nil || v != i {
			t.Fatalf("take = %v,%v want %d,nil", v, err, i)
		}
	}
}

func TestPutBlocksUntilTake(t *testing.T) {
	b, _ := New[int](1)
	ctx := context.Background()
	if err := b.Put(ctx, 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	var took atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Put(ctx, 2); err != nil {
			t.Errorf("blocked put: %v", err)
		}
		if !took.Load() {
			t.Error("put returned before a take freed a slot")
		}
	}()
	time.Sleep(10 * time.Millisecond)
	took.Store(true)
	if v, err := b.Take(ctx); err != nil || v != 1 {
		t.Fatalf("take = %v,%v", v, err)
	}
	<-done
}

func TestCloseDrainsBeforeSentinel(t *testing.T) {
	b, _ := New[int](5)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := b.Put(ctx, i); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	b.Close()
	b.Close() // idempotent
	if !b.IsClosed() {
		t.Fatal("expected closed")
	}
	for i := 1; i <= 3; i++ {
		v, err := b.Take(ctx)
		if err != nil || v != i {
			t.Fatalf("take = %v,%v want %d,nil", v, err, i)
		}
	}
	if _, err := b.Take(ctx); !errors.Is(err, base.ErrClosed) {
		t.Fatalf("take on drained closed buffer = %v want ErrClosed", err)
	}
}

func TestCloseUnblocksTakers(t *testing.T) {
	b, _ := New[int](2)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Take(context.Background()); !errors.Is(err, base.ErrClosed) {
				t.Errorf("take after close = %v want ErrClosed", err)
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	b.Close()
	wg.Wait()
}

func TestPutAfterClose(t *testing.T) {
	b, _ := New[int](1)
	b.Close()
	if err := b.Put(context.Background(), 1); !errors.Is(err, base.ErrClosed) {
		t.Fatalf("put after close = %v want ErrClosed", err)
	}
	if b.TryPut(1) {
		t.Fatal("tryput after close should report false")
	}
}

func TestContextCancel(t *testing.T) {
	b, _ := New[int](1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("take = %v want deadline exceeded", err)
	}
	if err := b.Put(context.Background(), 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if err := b.Put(ctx2, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("put on full buffer = %v want deadline exceeded", err)
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d want 1", b.Len())
	}
}

func TestContention(t *testing.T) {
	const (
		producers   = 3
		consumers   = 3
		perProducer = 150
	)
	b, _ := New[int](2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pwg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pwg.Add(1)
		go func(baseVal int) {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				if err := b.Put(ctx, baseVal+i); err != nil {
					t.Errorf("put: %v", err)
					return
				}
			}
		}(p * perProducer)
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		cwg  sync.WaitGroup
	)
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := b.Take(ctx)
				if errors.Is(err, base.ErrClosed) {
					return
				}
				if err != nil {
					t.Errorf("take: %v", err)
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	pwg.Wait()
	b.Close()
	cwg.Wait()

	if len(seen) != producers*perProducer {
		t.Fatalf("distinct values = %d want %d", len(seen), producers*perProducer)
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("value %d consumed %d times", v, n)
		}
	}
}
