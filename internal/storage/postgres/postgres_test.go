package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"midgard-history/internal/storage"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
}

func TestRangeQuery(t *testing.T) {
	base := "SELECT start_time FROM t"

	q, args := rangeQuery(base, "start_time", storage.TimeRange{})
	assert.Equal(t, base, q)
	assert.Empty(t, args)

	q, args = rangeQuery(base, "start_time", storage.TimeRange{To: ptr(int64(9))})
	assert.Equal(t, base+" WHERE start_time <= $1", q)
	assert.Equal(t, []any{int64(9)}, args)

	q, args = rangeQuery(base, "start_time", storage.TimeRange{From: ptr(int64(1)), To: ptr(int64(9))})
	assert.Equal(t, base+" WHERE start_time >= $1 AND start_time <= $2", q)
	assert.Equal(t, []any{int64(1), int64(9)}, args)
}

func TestIsDuplicateKeyError_Nil(t *testing.T) {
	assert.False(t, isDuplicateKeyError(nil))
}
