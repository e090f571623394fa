package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"midgard-history/internal/domain"
)

func checkSchema[T any](t *testing.T, s Schema[T]) {
	t.Helper()
	var rec T
	assert.Len(t, s.Values(rec), len(s.Columns), "%s values", s.Table)
	assert.Len(t, s.Fields(&rec), len(s.Columns), "%s fields", s.Table)
	assert.Equal(t, "start_time", s.Columns[0])
	assert.Equal(t, "end_time", s.Columns[1])
}

func TestSchemas_ColumnCounts(t *testing.T) {
	checkSchema(t, DepthSchema)
	checkSchema(t, RunePoolSchema)
	checkSchema(t, SwapSchema)
	checkSchema(t, EarningsSchema)

	var ts int64
	var p domain.PoolEarnings
	assert.Len(t, PoolValues(0, p), len(PoolColumns))
	assert.Len(t, PoolFields(&ts, &p), len(PoolColumns))
}

func TestSchemas_FieldsRoundTrip(t *testing.T) {
	in := domain.RunePoolInterval{StartTime: 1, EndTime: 2, Count: 3, Units: 4}
	var out domain.RunePoolInterval
	for i, dst := range RunePoolSchema.Fields(&out) {
		*(dst.(*int64)) = RunePoolSchema.Values(in)[i].(int64)
	}
	assert.Equal(t, in, out)
}

func TestTimeRange_Contains(t *testing.T) {
	from, to := int64(10), int64(20)
	r := TimeRange{From: &from, To: &to}

	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(20))
	assert.False(t, r.Contains(9))
	assert.False(t, r.Contains(21))
	assert.True(t, TimeRange{}.Contains(-5))
}
