package domain

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrIllegalTransition   = errors.New("illegal transaction state transition")
	ErrGatewayFailure      = errors.New("payment gateway rejected the charge")
)
