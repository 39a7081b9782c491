package slab

import "errors"

// Errors - validation
var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidInstrument  = errors.New("invalid instrument")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidRiskParams  = errors.New("invalid risk params")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Errors - resource
var (
	ErrPoolFull              = errors.New("pool full")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

// Errors - lifecycle
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrPositionNotFound    = errors.New("position not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation expired")
	ErrInvalidReservation  = errors.New("invalid reservation")
	ErrBatchNotOpen        = errors.New("batch window not yet elapsed")
)

// Errors - risk/policy
var (
	ErrKillBandExceeded    = errors.New("kill band exceeded")
	ErrReservedQtyExceeded = errors.New("reserved quantity exceeds order quantity")
)
