package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ExpiredEntriesSwept(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	for i := 0; i < 10000; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), time.Second))
		now = now.Add(2 * time.Second)
	}

	// A sweep runs every DefaultTTL of clock time, i.e. every 30 writes here.
	assert.LessOrEqual(t, len(m.entries), 31)
}

func TestMemory_CapEvictsSoonestExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }
	m.maxEntries = 3

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "mid", []byte("2"), 2*time.Minute))
	require.NoError(t, m.Set(ctx, "long", []byte("3"), 3*time.Minute))

	// Overwriting a present key never evicts.
	require.NoError(t, m.Set(ctx, "mid", []byte("2b"), 2*time.Minute))
	assert.Len(t, m.entries, 3)

	require.NoError(t, m.Set(ctx, "new", []byte("4"), time.Minute))
	assert.Len(t, m.entries, 3)
	_, ok, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
	got, ok, err := m.Get(ctx, "mid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("2b"), got)
}

func TestMemory_Miss(t *testing.T) {
	_, ok, err := NewMemory().Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_Drivers(t *testing.T) {
	c, err := New("none", "", 0)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New("memory", "", 0)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New("memcached", "", 0)
	assert.Error(t, err)
}

func TestRedis_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	r := NewRedis(fmt.Sprintf("%s:%s", host, port.Port()), 0)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(ctx))

	_, ok, err := r.Get(ctx, "swaps?page=1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "swaps?page=1", []byte(`{"data":[]}`), time.Minute))
	got, ok, err := r.Get(ctx, "swaps?page=1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"data":[]}`, string(got))
}
