// Package query serves history reads: range filter, optional bucketing, order, pagination.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"midgard-history/internal/storage"
)

// DefaultLimit is the page size used when none is requested.
const DefaultLimit = 400

// Order is the output order by start time.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Params are the normalised query parameters.
type Params struct {
	From     *int64
	To       *int64
	Order    Order
	Page     int
	Limit    int
	Interval string
}

// ParseParams reads query parameters. Values that do not parse are ignored
// and the default applies.
func ParseParams(v url.Values, defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	p := Params{
		From:     parseInt64(v.Get("from")),
		To:       parseInt64(v.Get("to")),
		Order:    Asc,
		Page:     1,
		Limit:    defaultLimit,
		Interval: strings.TrimSpace(v.Get("interval")),
	}
	if strings.EqualFold(v.Get("order"), string(Desc)) {
		p.Order = Desc
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n >= 1 {
		p.Limit = n
	}
	return p
}

func parseInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Range returns the store filter for the parameters.
func (p Params) Range() storage.TimeRange {
	return storage.TimeRange{From: p.From, To: p.To}
}

// Key renders the parameters in a fixed order for use as a cache key.
func (p Params) Key() string {
	v := url.Values{}
	if p.From != nil {
		v.Set("from", strconv.FormatInt(*p.From, 10))
	}
	if p.To != nil {
		v.Set("to", strconv.FormatInt(*p.To, 10))
	}
	if p.Interval != "" {
		v.Set("interval", p.Interval)
	}
	v.Set("order", string(p.Order))
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	return v.Encode()
}
