package repo

import (
	"context"
	"fmt"
)

// Iterator is a lazy, forward-only sequence of domain records over the full
// table in id order. It is not restartable; obtain a fresh one from
// ListAll. While the caller consumes a page, the next page is prefetched in
// the background. An empty page terminates the sequence.
//
// Usage:
//
//	it := works.ListAll(ctx)
//	for it.Next() {
//		w := it.Record()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[D any] struct {
	ctx      context.Context
	fetch    func(ctx context.Context, offset, limit int) ([]D, error)
	pageSize int

	page     []D
	idx      int
	offset   int
	pending  chan pageResult[D]
	current  D
	err      error
	finished bool
}

type pageResult[D any] struct {
	records []D
	err     error
}

func newIterator[D any](ctx context.Context, pageSize int, fetch func(ctx context.Context, offset, limit int) ([]D, error)) *Iterator[D] {
	if pageSize <= 0 {
		pageSize = 50
	}
	it := &Iterator[D]{ctx: ctx, fetch: fetch, pageSize: pageSize}
	it.prefetch()
	return it
}

// prefetch starts loading the page at the current offset into a buffered
// channel so consumption of the current page overlaps the next fetch.
func (it *Iterator[D]) prefetch() {
	ch := make(chan pageResult[D], 1)
	it.pending = ch
	offset := it.offset
	go func() {
		records, err := it.fetch(it.ctx, offset, it.pageSize)
		ch <- pageResult[D]{records: records, err: err}
	}()
}

// Next advances to the next record, fetching pages as needed. It returns
// false once the sequence is exhausted or failed; Err distinguishes the
// two.
func (it *Iterator[D]) Next() bool {
	if it.finished {
		return false
	}
	if it.idx < len(it.page) {
		it.current = it.page[it.idx]
		it.idx++
		return true
	}

	var res pageResult[D]
	select {
	case res = <-it.pending:
	case <-it.ctx.Done():
		it.err = fmt.Errorf("listing interrupted: %w", it.ctx.Err())
		it.finished = true
		return false
	}
	if res.err != nil {
		it.err = res.err
		it.finished = true
		return false
	}
	if len(res.records) == 0 {
		it.finished = true
		return false
	}
	it.page = res.records
	it.idx = 0
	it.offset += len(res.records)
	if len(res.records) == it.pageSize {
		it.prefetch()
	} else {
		// short page: the one after it is necessarily empty
		done := make(chan pageResult[D], 1)
		done <- pageResult[D]{}
		it.pending = done
	}
	it.current = it.page[it.idx]
	it.idx++
	return true
}

// Record returns the record produced by the last successful Next.
func (it *Iterator[D]) Record() D { return it.current }

// Err returns the error that terminated the sequence, if any. Cancellation
// of the listing context surfaces here rather than as silent truncation.
func (it *Iterator[D]) Err() error { return it.err }
