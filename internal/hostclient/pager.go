package hostclient

import "context"

// fetchPageFunc retrieves one page given an opaque cursor (the empty string
// requests the first page) and returns the items, the next cursor, and
// whether more pages remain.
type fetchPageFunc[T any] func(ctx context.Context, cursor string) (items []T, nextCursor string, hasMore bool, err error)

// Pager lazily walks a paginated host listing (§4.2: "the caller drives
// iteration"). Next returns one page at a time; Done reports exhaustion so
// callers can use a plain for loop instead of a sentinel error.
type Pager[T any] struct {
	fetch   fetchPageFunc[T]
	cursor  string
	started bool
	done    bool
}

func newPager[T any](fetch fetchPageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Done reports whether the pager has no more pages to fetch.
func (p *Pager[T]) Done() bool { return p.done }

// Next fetches and returns the next page. Callers should check Done before
// calling Next again once a page with hasMore=false has been returned.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	items, next, hasMore, err := p.fetch(ctx, p.cursor)
	if err != nil {
		return nil, err
	}
	p.started = true
	p.cursor = next
	p.done = !hasMore
	return items, nil
}

// All drains every remaining page into a single slice, for callers (tests,
// small repositories) that don't need page-at-a-time control.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	for !p.done {
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}
