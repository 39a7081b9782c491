package fixed

import "errors"

// ErrPoolFull is returned by Alloc when a pool has exhausted its
// capacity. Pool exhaustion is always a recoverable error, never a panic.
var ErrPoolFull = errors.New("pool full")

// Pool is a fixed-capacity, freelist-backed arena of T, addressed by a u32
// index with InvalidIndex as "none". A blittable record format would pack
// the freelist pointer into a record field; Go gains nothing from that
// trick, so the freelist lives in a side slice.
type Pool[T any] struct {
	slots []T
	used  []bool
	free  []uint32
	count uint32
}

func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		slots: make([]T, capacity),
		used:  make([]bool, capacity),
	}
}

// Alloc pops a free slot (reusing it if the freelist is non-empty, else
// growing the high-water mark) and returns its index and a pointer to the
// zeroed record.
func (p *Pool[T]) Alloc() (uint32, *T, error) {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.used[idx] = true
		p.count++
		var zero T
		p.slots[idx] = zero
		return idx, &p.slots[idx], nil
	}
	if int(p.count) >= len(p.slots) {
		return 0, nil, ErrPoolFull
	}
	idx := p.count
	p.count++
	p.used[idx] = true
	return idx, &p.slots[idx], nil
}

// Free pushes idx back onto the freelist. Freeing an already-free or
// out-of-range index is a no-op.
func (p *Pool[T]) Free(idx uint32) {
	if idx == InvalidIndex || int(idx) >= len(p.slots) || !p.used[idx] {
		return
	}
	p.used[idx] = false
	p.free = append(p.free, idx)
	p.count--
}

// Get returns a pointer to the record at idx, or false if idx is invalid,
// out of range, or currently free.
func (p *Pool[T]) Get(idx uint32) (*T, bool) {
	if idx == InvalidIndex || int(idx) >= len(p.slots) || !p.used[idx] {
		return nil, false
	}
	return &p.slots[idx], true
}

func (p *Pool[T]) InUse(idx uint32) bool {
	return idx != InvalidIndex && int(idx) < len(p.slots) && p.used[idx]
}

func (p *Pool[T]) Len() int { return int(p.count) }
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Each iterates every currently-allocated slot in index order — the
// "scan the whole pool, skip free slots" walk expiry sweeps and account
// lookups rely on.
func (p *Pool[T]) Each(fn func(idx uint32, rec *T)) {
	for i := range p.slots {
		if p.used[i] {
			fn(uint32(i), &p.slots[i])
		}
	}
}
