package threshold

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_RoundTrip(t *testing.T) {
	c := New(10000)
	assert.Equal(t, int32(10000), c.Get())

	for _, v := range []int32{500, 0, -1, -500, math.MaxInt32, math.MinInt32} {
		c.Set(v)
		assert.Equal(t, v, c.Get())
	}
}

func TestCell_ZeroValue(t *testing.T) {
	var c Cell
	assert.Equal(t, int32(0), c.Get())
	c.Set(7)
	assert.Equal(t, int32(7), c.Get())
}

func TestCell_Concurrent(t *testing.T) {
	c := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = c.Get()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := int32(1); j <= 1000; j++ {
			c.Set(j)
		}
	}()

	wg.Wait()
	assert.Equal(t, int32(1000), c.Get())
}
