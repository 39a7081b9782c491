package router

import (
	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
)

// MaxSlabCount is the maximum number of shards a Router can register and
// the maximum span of one atomic multi-shard operation.
const MaxSlabCount = 8

// SlabRegistry holds up to MaxSlabCount shards, each keyed by its program
// identity and addressed by the dense shard index handed back at
// registration.
type SlabRegistry struct {
	programIDs [MaxSlabCount]fixed.ID
	shards     [MaxSlabCount]*slab.Shard
	count      int
}

// NewSlabRegistry returns an empty registry.
func NewSlabRegistry() *SlabRegistry {
	return &SlabRegistry{}
}

// Register adds a shard under its program identity, returning its shard
// index for use in Exposure/Reserve/Commit calls. Returns PoolFull-shaped
// ErrInvalidSlabCount once MaxSlabCount is reached.
func (r *SlabRegistry) Register(programID fixed.ID, shard *slab.Shard) (uint8, error) {
	if r.count >= MaxSlabCount {
		return 0, ErrInvalidSlabCount
	}
	for i := 0; i < r.count; i++ {
		if r.programIDs[i].Equal(programID) {
			return 0, ErrInvalidPortfolio
		}
	}
	idx := uint8(r.count)
	r.programIDs[idx] = programID
	r.shards[idx] = shard
	r.count++
	return idx, nil
}

// Get returns the shard registered at shardIdx.
func (r *SlabRegistry) Get(shardIdx uint8) (*slab.Shard, error) {
	if int(shardIdx) >= r.count || r.shards[shardIdx] == nil {
		return nil, ErrSlabNotRegistered
	}
	return r.shards[shardIdx], nil
}

// Count returns the number of registered shards.
func (r *SlabRegistry) Count() int { return r.count }
