package insurance

import "errors"

// Errors - lifecycle
var (
	ErrNoPendingWithdrawal = errors.New("no pending withdrawal")
	ErrWithdrawalLocked    = errors.New("withdrawal still timelocked")
)

// Errors - risk/policy
var (
	ErrInsuranceBelowThreshold = errors.New("withdrawal would breach ADL threshold")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidAmount           = errors.New("invalid amount")
)
