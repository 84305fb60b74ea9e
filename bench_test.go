package boundedbuf

import (
	"context"
	"testing"
	"time"
)

// Benchmark paired Put/Take with a single consumer draining concurrently.
func BenchmarkPutTake(b *testing.B) {
	buf, _ := New[int](64)
	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		for i := 0; i < b.N; i++ {
			_, _ = buf.Take(ctx)
		}
		close(done)
	}()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buf.Put(ctx, i)
	}
	<-done
}

// Benchmark the uncontended fast path: capacity never reached.
func BenchmarkPutTake_Uncontended(b *testing.B) {
	buf, _ := New[int](1)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buf.Put(ctx, i)
		_, _ = buf.Take(ctx)
	}
}

// Benchmark TryTake in a polling-like scenario.
func BenchmarkTryTake(b *testing.B) {
	buf, _ := New[int](b.N + 1)
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		_ = buf.Put(ctx, i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	taken := 0
	for taken < b.N {
		if _, ok := buf.TryTake(); ok {
			taken++
		} else {
			time.Sleep(time.Microsecond)
		}
	}
}
