package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBounded(t *testing.T) {
	t.Run("valid capacity", func(t *testing.T) {
		c, err := NewBounded[string](10)
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, 10, c.Capacity())
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := NewBounded[string](0)
		assert.Equal(t, ErrInvalidCapacity, err)
	})
}

func TestBounded_ReadWrite(t *testing.T) {
	c, err := NewBounded[*int](100)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Read("missing")
	assert.False(t, ok)

	v := 42
	c.Write("answer", &v)

	got, ok := c.Read("answer")
	require.True(t, ok)
	assert.Same(t, &v, got, "cache must hand back the identical value")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestBounded_ConcurrentAccess(t *testing.T) {
	c, err := NewBounded[int](1000)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			c.Write(key, i)
			got, ok := c.Read(key)
			if assert.True(t, ok) {
				assert.Equal(t, i, got)
			}
		}(i)
	}
	wg.Wait()
}

func TestBounded_CapacityBound(t *testing.T) {
	c, err := NewBounded[int](10)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 200; i++ {
		c.Write(fmt.Sprintf("k%d", i), i)
	}

	present := 0
	for i := 0; i < 200; i++ {
		if _, ok := c.Read(fmt.Sprintf("k%d", i)); ok {
			present++
		}
	}
	assert.LessOrEqual(t, present, 10)
}
