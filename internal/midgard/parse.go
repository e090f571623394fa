package midgard

import (
	"strings"

	"github.com/shopspring/decimal"

	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/observability"
)

// MalformedHook is told about numeric fields that could not be parsed.
type MalformedHook func(series domain.Series, field, value string)

// DefaultMalformedHook counts the field and logs it at debug level.
func DefaultMalformedHook(series domain.Series, field, value string) {
	observability.RecordMalformedField(string(series), field)
	logger.GetLogger().WithComponent("midgard").WithFields(logger.Fields{
		"series": series,
		"field":  field,
		"value":  value,
	}).Debug("malformed numeric field, using zero")
}

// fieldParser turns Midgard decimal strings into numbers. Malformed values
// become zero and are reported; empty values are zero silently.
type fieldParser struct {
	series domain.Series
	hook   MalformedHook
}

func (p fieldParser) decimal(field, raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		if p.hook != nil {
			p.hook(p.series, field, raw)
		}
		return decimal.Zero, false
	}
	return d, true
}

func (p fieldParser) int(field, raw string) int64 {
	d, ok := p.decimal(field, raw)
	if !ok {
		return 0
	}
	return d.IntPart()
}

func (p fieldParser) float(field, raw string) float64 {
	d, ok := p.decimal(field, raw)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}
