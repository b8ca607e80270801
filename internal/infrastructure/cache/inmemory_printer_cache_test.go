package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

func TestInMemoryPrinterCache(t *testing.T) {
	ctx := context.Background()
	printers := []spooler.Printer{{Name: "Zebra", Status: spooler.StatusAvailable}}

	t.Run("miss then hit", func(t *testing.T) {
		c := NewInMemoryPrinterCache(time.Hour)
		defer c.Close()

		_, ok := c.Get(ctx, "printers:cups")
		assert.False(t, ok)

		c.Set(ctx, "printers:cups", printers)
		got, ok := c.Get(ctx, "printers:cups")
		require.True(t, ok)
		assert.Equal(t, printers, got)
	})

	t.Run("returns copies", func(t *testing.T) {
		c := NewInMemoryPrinterCache(time.Hour)
		defer c.Close()

		c.Set(ctx, "k", printers)
		got, _ := c.Get(ctx, "k")
		got[0].Name = "changed"
		again, _ := c.Get(ctx, "k")
		assert.Equal(t, "Zebra", again[0].Name)
	})

	t.Run("expires", func(t *testing.T) {
		c := NewInMemoryPrinterCache(10 * time.Millisecond)
		defer c.Close()

		c.Set(ctx, "k", printers)
		time.Sleep(20 * time.Millisecond)
		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)

		c.cleanup()
		assert.Empty(t, c.entries)
	})

	t.Run("zero ttl disables caching", func(t *testing.T) {
		c := NewInMemoryPrinterCache(0)
		defer c.Close()

		c.Set(ctx, "k", printers)
		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := NewInMemoryPrinterCache(time.Minute)
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})
}

func TestPrinterCodec(t *testing.T) {
	data, err := encodePrinters(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	in := []spooler.Printer{{Name: "Office", Status: spooler.StatusBusy, Description: "Printer Office"}}
	data, err = encodePrinters(in)
	require.NoError(t, err)
	out, err := decodePrinters(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodePrinters([]byte("{"))
	assert.Error(t, err)
}

func TestPrinterCacheFactory(t *testing.T) {
	t.Run("in-memory by default", func(t *testing.T) {
		c := NewPrinterCacheFactory(time.Minute).CreateCache()
		defer c.Close()
		assert.IsType(t, &InMemoryPrinterCache{}, c)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewPrinterCacheFactory(time.Minute, WithRedis(RedisConfig{Host: "127.0.0.1", Port: 1}))
		c := f.CreateCache()
		defer c.Close()
		assert.IsType(t, &InMemoryPrinterCache{}, c)
	})
}
