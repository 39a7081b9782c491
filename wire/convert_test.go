package wire

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
	"github.com/stretchr/testify/require"
)

func TestReserveAndCommitReturnFromLiveShard(t *testing.T) {
	s := slab.NewShard(fixed.ID{1}, fixed.ID{2}, fixed.ID{3}, 1000, 500, 10, 20, 1000)
	instr, err := s.AddInstrument([8]byte{'B', 'T', 'C'}, 1_000_000, 1, 1, 50_000_000_000)
	require.NoError(t, err)

	maker := s.OpenAccount(fixed.ID{9})
	taker := s.OpenAccount(fixed.ID{10})
	require.NoError(t, s.DepositCash(maker, big.NewInt(1_000_000_000)))
	require.NoError(t, s.DepositCash(taker, big.NewInt(1_000_000_000)))

	_, err = s.PlaceOrder(maker, instr, slab.Sell, 100, 10, 0, 0)
	require.NoError(t, err)

	res, err := s.Reserve(taker, instr, slab.Buy, 10, 102, 0, fixed.ID{}, 1, 1000)
	require.NoError(t, err)

	reserveReturn := ReserveReturnFrom(res)
	buf := reserveReturn.Encode()
	require.Len(t, buf, ReserveReturnLen)
	decoded, err := DecodeReserveReturn(buf)
	require.NoError(t, err)
	require.Equal(t, reserveReturn, decoded)

	commit, err := s.Commit(res.HoldID, 1001)
	require.NoError(t, err)

	commitReturn := CommitReturnFrom(commit)
	buf = commitReturn.Encode()
	require.Len(t, buf, CommitReturnLen)
	decodedCommit, err := DecodeCommitReturn(buf)
	require.NoError(t, err)
	require.Equal(t, commitReturn, decodedCommit)
}
