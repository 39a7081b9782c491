package insurance

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

func newTestPool() *Pool {
	return NewPool(fixed.ID{7}, 50, 50, 600) // 0.5% contribution, 0.5% ADL threshold, 10min timelock
}

// balance=100_000, OI=100_000_000_000_000,
// adl_threshold_bps=50. Payout of 1_000_000 pays out only the balance
// (100_000), leaves a 900_000 shortfall, and requires ADL.
func TestPayoutTriggersADL(t *testing.T) {
	p := newTestPool()
	p.Balance = big.NewInt(100_000)
	p.UpdateOpenInterest(big.NewInt(100_000_000_000_000))

	paid, adlRequired := p.Payout(big.NewInt(1_000_000), 1, 0, 1000)
	require.Equal(t, big.NewInt(100_000), paid)
	require.True(t, adlRequired)
	require.Equal(t, 0, big.NewInt(0).Cmp(p.Balance))
}

func TestContributeAndPayoutBalanced(t *testing.T) {
	p := newTestPool()
	p.UpdateOpenInterest(big.NewInt(1_000_000_000))
	require.NoError(t, p.Contribute(big.NewInt(50_000), 1))

	paid, adlRequired := p.Payout(big.NewInt(10_000), 2, 0, 2)
	require.Equal(t, big.NewInt(10_000), paid)
	require.False(t, adlRequired)
	require.Equal(t, big.NewInt(40_000), p.Balance)

	events := p.Events()
	require.Len(t, events, 2)
	require.Equal(t, EventContribution, events[0].Type)
	require.Equal(t, EventPayout, events[1].Type)
}

func TestWithdrawalTimelock(t *testing.T) {
	p := newTestPool()
	p.Balance = big.NewInt(1_000_000)
	p.UpdateOpenInterest(big.NewInt(1_000)) // tiny OI so threshold is trivial

	require.NoError(t, p.InitiateWithdrawal(big.NewInt(100_000), 1000))
	_, err := p.CompleteWithdrawal(1000)
	require.ErrorIs(t, err, ErrWithdrawalLocked)

	amt, err := p.CompleteWithdrawal(1000 + 600)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100_000), amt)
	require.Equal(t, big.NewInt(900_000), p.Balance)

	_, err = p.CompleteWithdrawal(2000)
	require.ErrorIs(t, err, ErrNoPendingWithdrawal)
}

func TestWithdrawalBreachesThresholdIsRefused(t *testing.T) {
	p := newTestPool()
	p.Balance = big.NewInt(1_000_000)
	p.UpdateOpenInterest(big.NewInt(100_000_000)) // threshold = 0.5% of OI = 500_000

	err := p.InitiateWithdrawal(big.NewInt(900_000), 1000) // leaves 100_000 < 500_000
	require.ErrorIs(t, err, ErrInsuranceBelowThreshold)
}

func TestCancelWithdrawal(t *testing.T) {
	p := newTestPool()
	p.Balance = big.NewInt(1_000_000)
	p.UpdateOpenInterest(big.NewInt(1_000))

	require.NoError(t, p.InitiateWithdrawal(big.NewInt(1_000), 1000))
	require.NoError(t, p.CancelWithdrawal(1001))
	_, err := p.CompleteWithdrawal(999_999_999)
	require.ErrorIs(t, err, ErrNoPendingWithdrawal)
}

func TestSelectADLOrdersByScoreAndStopsAtTarget(t *testing.T) {
	candidates := []ADLCandidate{
		{AccountIdx: 1, Qty: 10, RoiBps: 100, LeverageRatioBps: 10_000},   // score 100+100=200
		{AccountIdx: 2, Qty: 10, RoiBps: 6000, LeverageRatioBps: 500_000}, // score 5000+5000=10000
		{AccountIdx: 3, Qty: 10, RoiBps: 2000, LeverageRatioBps: 100_000}, // score 2000+1000=3000
	}
	selected := SelectADL(candidates, 15)
	require.Len(t, selected, 2)
	require.Equal(t, uint32(2), selected[0].AccountIdx)
	require.Equal(t, uint32(3), selected[1].AccountIdx)
}

func TestUpdateConfigRequiresFullLPOwnerMatch(t *testing.T) {
	p := newTestPool()
	wrongOwner := fixed.ID{7} // differs in later bytes from p.LPOwner only by construction below
	wrongOwner[31] = 1
	err := p.UpdateConfig(wrongOwner, 10, 10, 10)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, p.UpdateConfig(fixed.ID{7}, 75, 60, 1200))
	require.EqualValues(t, 75, p.ContributionRateBps)
}
