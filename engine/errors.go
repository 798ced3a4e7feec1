/*
errors.go - Centralized error types for the lease financial engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Domain packages wrap these with additional context where useful.

ERROR CATEGORIES:
  1. Validation errors - operator-correctable input problems (refund <= 0,
     refund exceeding the deposit under a reject policy, bad exchange rate)
  2. Not-found errors - missing tenant/payment records
  3. Data-insufficiency outcomes are NOT errors: a missing IRL comparison
     quarter, an absent deposit amount, or a missing date of birth yield
     "no result" from the calculators instead of an error value.

USAGE:
    if errors.Is(err, engine.ErrInvalidRefund) {
        // 400 to the operator, write not performed
    }

SEE ALSO:
  - deposits: wraps refund errors with amounts
  - api: maps these to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRate is returned when an exchange rate is zero or negative.
	ErrInvalidRate = errors.New("exchange rate must be positive")

	// ErrInvalidRefund is returned when a deposit refund amount is <= 0.
	ErrInvalidRefund = errors.New("refund amount must be positive")

	// ErrRefundExceedsDeposit is returned when a refund exceeds the deposit
	// and the configured policy rejects over-refunds.
	ErrRefundExceedsDeposit = errors.New("refund exceeds deposit amount")

	// ErrNoDeposit is returned when a deposit operation targets a tenant
	// without a deposit amount. Reporting simply skips such tenants.
	ErrNoDeposit = errors.New("tenant has no deposit")

	// ErrTenantNotFound is returned when a referenced tenant doesn't exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidMonth is returned when a month key is not YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month: expected YYYY-MM")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RateError reports an unusable exchange rate.
type RateError struct {
	Rate decimal.Decimal
}

func (e *RateError) Error() string {
	return fmt.Sprintf("exchange rate must be positive, got %s", e.Rate)
}

func (e *RateError) Unwrap() error { return ErrInvalidRate }

// RefundError reports an invalid deposit refund attempt.
type RefundError struct {
	TenantID TenantID
	Amount   decimal.Decimal
	Deposit  decimal.Decimal
	Reason   error
}

func (e *RefundError) Error() string {
	return fmt.Sprintf("refund of %s against deposit %s for tenant %s: %v",
		e.Amount, e.Deposit, e.TenantID, e.Reason)
}

func (e *RefundError) Unwrap() error { return e.Reason }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid operator input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRefund) ||
		errors.Is(err, ErrRefundExceedsDeposit) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidMonth)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrNoDeposit)
}
