package pool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoluck/dilithium-threshold/pkg/pool"
)

func TestRunVisitsEveryIndex(t *testing.T) {
	p := pool.NewPool(4)
	defer p.TearDown()

	const n = 50
	var seen [n]int32
	err := p.Run(context.Background(), n, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i, v := range seen {
		assert.EqualValues(t, 1, v, "index %d", i)
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	p := pool.NewPool(0)
	defer p.TearDown()

	sentinel := assert.AnError
	err := p.Run(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 3 {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestMapBoolDoesNotShortCircuit(t *testing.T) {
	p := pool.NewPool(2)
	defer p.TearDown()

	results := pool.MapBool(context.Background(), p, 5, func(_ context.Context, i int) bool {
		return i%2 == 0
	})
	assert.Equal(t, []bool{true, false, true, false, true}, results)
}
