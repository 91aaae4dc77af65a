package alpaca

import (
	"context"
	"fmt"
)

// PageFetcher fetches one page. An empty pageToken requests the first page;
// an empty nextPageToken marks the last page.
type PageFetcher[T any] func(ctx context.Context, pageToken string) (items []T, nextPageToken string, err error)

// Paginate calls fetch until no further page token is returned and returns
// every item in page order. The first failing fetch aborts the loop and its
// error is returned without the items collected so far.
func Paginate[T any](ctx context.Context, fetch PageFetcher[T]) ([]T, error) {
	var (
		all   []T
		token string
	)

	for {
		items, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if next == "" {
			return all, nil
		}

		token = next
	}
}

// PageIterator walks the items of a paginated endpoint one at a time,
// fetching pages lazily.
type PageIterator[T any] struct {
	ctx     context.Context //nolint:containedctx // iterator is bound to one listing
	fetch   PageFetcher[T]
	items   []T
	index   int
	token   string
	started bool
	done    bool
}

// NewPageIterator creates an iterator over fetch.
func NewPageIterator[T any](ctx context.Context, fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:   ctx,
		fetch: fetch,
	}
}

// HasNext reports whether another item may be available. It returns true
// before the first fetch.
func (it *PageIterator[T]) HasNext() bool {
	if !it.started {
		return true
	}

	return it.index < len(it.items) || !it.done
}

// Next returns the next item, fetching the following page when the current
// one is exhausted.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T

	for it.index >= len(it.items) {
		if it.started && it.done {
			return zero, ErrNoMoreItems
		}

		items, next, err := it.fetch(it.ctx, it.token)
		if err != nil {
			return zero, fmt.Errorf("fetching page: %w", err)
		}

		it.started = true
		it.items = items
		it.index = 0
		it.token = next
		it.done = next == ""
	}

	item := it.items[it.index]
	it.index++

	return item, nil
}

// NextPageToken returns the cursor of the page after the current one.
func (it *PageIterator[T]) NextPageToken() string {
	return it.token
}
