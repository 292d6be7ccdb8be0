package repo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

// pagedFetch serves records out of a fixed slice, recording how many pages
// were requested.
func pagedFetch(records []int, calls *atomic.Int64) func(context.Context, int, int) ([]int, error) {
	return func(_ context.Context, offset, limit int) ([]int, error) {
		calls.Add(1)
		if offset >= len(records) {
			return nil, nil
		}
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		return records[offset:end], nil
	}
}

func TestIteratorWalksAllPagesInOrder(t *testing.T) {
	records := make([]int, 0, 23)
	for i := 0; i < 23; i++ {
		records = append(records, i)
	}
	var calls atomic.Int64
	it := newIterator(context.Background(), 10, pagedFetch(records, &calls))

	var got []int
	for it.Next() {
		got = append(got, it.Record())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("record %d out of order: %d", i, v)
		}
	}
	// pages of 10, 10, 3; the short page pre-seeds its own terminator
	if n := calls.Load(); n != 3 {
		t.Fatalf("expected 3 fetches, got %d", n)
	}
}

func TestIteratorFullFinalPageFetchesEmptyTerminator(t *testing.T) {
	var calls atomic.Int64
	it := newIterator(context.Background(), 5, pagedFetch([]int{0, 1, 2, 3, 4}, &calls))

	count := 0
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 records, got %d", count)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected full page plus empty terminator, got %d fetches", n)
	}
}

func TestIteratorEmptyTable(t *testing.T) {
	var calls atomic.Int64
	it := newIterator(context.Background(), 10, pagedFetch(nil, &calls))
	if it.Next() {
		t.Fatal("expected no records")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIteratorSurfacesFetchError(t *testing.T) {
	boom := errors.New("backend down")
	it := newIterator(context.Background(), 10, func(context.Context, int, int) ([]int, error) {
		return nil, boom
	})
	if it.Next() {
		t.Fatal("expected failure before the first record")
	}
	if !errors.Is(it.Err(), boom) {
		t.Fatalf("expected fetch error, got %v", it.Err())
	}
}

func TestIteratorCancellationSurfacesAsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocked := make(chan struct{})
	it := newIterator(ctx, 2, func(fetchCtx context.Context, offset, limit int) ([]int, error) {
		if offset == 0 {
			return []int{0, 1}, nil
		}
		close(blocked)
		<-fetchCtx.Done()
		return nil, fetchCtx.Err()
	})

	if !it.Next() || !it.Next() {
		t.Fatalf("expected first page to be served: %v", it.Err())
	}
	go func() {
		<-blocked
		cancel()
	}()
	if it.Next() {
		t.Fatal("expected cancellation to stop the iterator")
	}
	if err := it.Err(); err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if it.Next() {
		t.Fatal("iterator must stay finished after failure")
	}
}

func TestIteratorIsForwardOnly(t *testing.T) {
	it := newIterator(context.Background(), 3, pagedFetch([]int{0, 1, 2}, new(atomic.Int64)))
	for it.Next() {
	}
	for i := 0; i < 3; i++ {
		if it.Next() {
			t.Fatal("exhausted iterator restarted")
		}
	}
}

func ExampleIterator() {
	it := newIterator(context.Background(), 2, pagedFetch([]int{1, 2, 3}, new(atomic.Int64)))
	for it.Next() {
		fmt.Println(it.Record())
	}
	// Output:
	// 1
	// 2
	// 3
}
