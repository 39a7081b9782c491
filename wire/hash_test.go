package wire

import (
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

func TestCommitmentHashDeterministicAndSensitiveToEachField(t *testing.T) {
	salt := fixed.ID{9, 9, 9}
	base := CommitmentHash(1, 2, 0, 100, salt)
	require.Equal(t, base, CommitmentHash(1, 2, 0, 100, salt), "same inputs must hash identically")

	require.NotEqual(t, base, CommitmentHash(2, 2, 0, 100, salt))
	require.NotEqual(t, base, CommitmentHash(1, 3, 0, 100, salt))
	require.NotEqual(t, base, CommitmentHash(1, 2, 1, 100, salt))
	require.NotEqual(t, base, CommitmentHash(1, 2, 0, 101, salt))
	require.NotEqual(t, base, CommitmentHash(1, 2, 0, 100, fixed.ID{1, 1, 1}))
}

func TestOrderIDNamespacesByShard(t *testing.T) {
	shardA := fixed.ID{1}
	shardB := fixed.ID{2}
	require.NotEqual(t, OrderID(shardA, 1), OrderID(shardB, 1))
	require.Equal(t, OrderID(shardA, 1), OrderID(shardA, 1))
}

func TestPositionKeyNamespacesByAccountAndInstrument(t *testing.T) {
	shard := fixed.ID{1}
	k1 := PositionKey(shard, 1, 0)
	k2 := PositionKey(shard, 1, 1)
	k3 := PositionKey(shard, 2, 0)
	require.NotEqual(t, k1, k2)
	require.NotEqual(t, k1, k3)
}
