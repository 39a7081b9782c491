package fixed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolExhaustionReturnsPoolFull(t *testing.T) {
	p := NewPool[int](2)

	i0, v0, err := p.Alloc()
	require.NoError(t, err)
	*v0 = 10
	i1, _, err := p.Alloc()
	require.NoError(t, err)

	_, _, err = p.Alloc()
	require.ErrorIs(t, err, ErrPoolFull)
	require.Equal(t, 2, p.Len())

	p.Free(i0)
	require.Equal(t, 1, p.Len())
	_, ok := p.Get(i0)
	require.False(t, ok, "freed slot is unreadable")

	// The freed slot is reused, zeroed.
	i2, v2, err := p.Alloc()
	require.NoError(t, err)
	require.Equal(t, i0, i2)
	require.Equal(t, 0, *v2)
	_ = i1
}

func TestPoolFreeIsIdempotent(t *testing.T) {
	p := NewPool[int](2)
	idx, _, err := p.Alloc()
	require.NoError(t, err)

	p.Free(idx)
	p.Free(idx) // double-free is a no-op
	p.Free(InvalidIndex)
	p.Free(999)
	require.Equal(t, 0, p.Len())

	// Both slots still allocatable after the no-op frees.
	_, _, err = p.Alloc()
	require.NoError(t, err)
	_, _, err = p.Alloc()
	require.NoError(t, err)
	_, _, err = p.Alloc()
	require.ErrorIs(t, err, ErrPoolFull)
}

func TestPoolEachVisitsOnlyLiveSlots(t *testing.T) {
	p := NewPool[int](4)
	var idxs []uint32
	for i := 0; i < 3; i++ {
		idx, v, err := p.Alloc()
		require.NoError(t, err)
		*v = i + 1
		idxs = append(idxs, idx)
	}
	p.Free(idxs[1])

	var seen []int
	p.Each(func(idx uint32, rec *int) {
		seen = append(seen, *rec)
	})
	require.Equal(t, []int{1, 3}, seen)
}
