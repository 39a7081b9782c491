package wire

// Router instruction discriminators 0..9: Initialize,
// InitializePortfolio, Deposit, Withdraw, ExecuteCrossSlab, MultiSlabReserve,
// MultiSlabCommit, MultiSlabCancel, GlobalLiquidation, MarkToMarket. These
// carry no fixed body layout, so unlike the Slab discriminators they are
// exposed only as named constants for a host to route on; the router
// package's own Go methods are the decoded call, not a byte layout to
// round-trip.
const (
	RouterInitialize uint8 = iota
	RouterInitializePortfolio
	RouterDeposit
	RouterWithdraw
	RouterExecuteCrossSlab
	RouterMultiSlabReserve
	RouterMultiSlabCommit
	RouterMultiSlabCancel
	RouterGlobalLiquidation
	RouterMarkToMarket
)
