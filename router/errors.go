package router

import "errors"

// Errors - validation
var (
	ErrInvalidPortfolio  = errors.New("invalid portfolio")
	ErrInvalidSlabCount  = errors.New("invalid multi-shard slab count")
	ErrSlabNotRegistered = errors.New("shard not registered")
	ErrInvalidAccount    = errors.New("invalid account")
)

// Errors - resource
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Errors - risk/policy
var (
	ErrPortfolioInsufficientMargin = errors.New("portfolio initial margin requirement not met")
	ErrPortfolioNotLiquidatable    = errors.New("portfolio is not below maintenance margin")
)

// Errors - transport
var (
	ErrCpiError = errors.New("cross-shard call failed")
)
