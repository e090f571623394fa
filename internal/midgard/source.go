package midgard

import (
	"context"

	"midgard-history/internal/domain"
)

// Source fetches pages of one series. It satisfies ingestion.PageSource.
type Source[T any] struct {
	client *Client
	series domain.Series
	parser fieldParser
	fetch  func(ctx context.Context, from int64, count int) ([]T, error)
}

// Series returns the series this source reads.
func (s *Source[T]) Series() domain.Series { return s.series }

// FetchPage requests count hourly intervals starting at from.
func (s *Source[T]) FetchPage(ctx context.Context, from int64, count int) ([]T, error) {
	return s.fetch(ctx, from, count)
}

func newSource[T any, R any, W interface{ toDomain(fieldParser) T }](
	c *Client, series domain.Series, hook MalformedHook, items func(*R) []W,
) *Source[T] {
	src := &Source[T]{
		client: c,
		series: series,
		parser: fieldParser{series: series, hook: hook},
	}
	src.fetch = func(ctx context.Context, from int64, count int) ([]T, error) {
		var resp R
		if err := c.history(ctx, series, from, count, &resp); err != nil {
			return nil, err
		}
		wires := items(&resp)
		out := make([]T, 0, len(wires))
		for _, w := range wires {
			out = append(out, w.toDomain(src.parser))
		}
		return out, nil
	}
	return src
}

// DepthSource reads the depth history of the configured pool.
func (c *Client) DepthSource(hook MalformedHook) *Source[domain.DepthInterval] {
	return newSource[domain.DepthInterval](c, domain.SeriesDepth, hook,
		func(r *depthResponse) []depthWire { return r.Intervals })
}

// RunePoolSource reads the RUNEPool history.
func (c *Client) RunePoolSource(hook MalformedHook) *Source[domain.RunePoolInterval] {
	return newSource[domain.RunePoolInterval](c, domain.SeriesRunePool, hook,
		func(r *runePoolResponse) []runePoolWire { return r.Intervals })
}

// SwapSource reads the swap history.
func (c *Client) SwapSource(hook MalformedHook) *Source[domain.SwapInterval] {
	return newSource[domain.SwapInterval](c, domain.SeriesSwaps, hook,
		func(r *swapResponse) []swapWire { return r.Intervals })
}

// EarningsSource reads the earnings history including the per-pool breakdown.
func (c *Client) EarningsSource(hook MalformedHook) *Source[domain.EarningsInterval] {
	return newSource[domain.EarningsInterval](c, domain.SeriesEarnings, hook,
		func(r *earningsResponse) []earningsWire { return r.Intervals })
}
