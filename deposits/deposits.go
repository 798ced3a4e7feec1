/*
Package deposits implements the security-deposit lifecycle model.

PURPOSE:
  There is no stored deposit status. State is derived from the tenant's raw
  deposit fields on every read, so the dashboard can never drift from the
  underlying record:

    refunded >= deposit and refund date set  -> returned
    0 < refunded < deposit                   -> partial_return
    inactive and moved out                   -> to_be_returned
    otherwise                                -> held

  Tenants without a positive deposit amount are excluded from deposit
  reporting entirely; that is not an error.

OVERDUE SIGNAL:
  A return pending for more than 30 days after move-out raises an overdue
  flag. It is a reporting signal only, never a blocking error.

RETURN WORKFLOW:
  Return() validates the refund and writes the refunded amount/date. What
  happens when the refund exceeds the deposit is a configurable policy
  (reject, clamp, or accept) because the business has intentionally paid
  goodwill over-refunds in the past.

SEE ALSO:
  - engine: Tenant record shape, Date, sentinel errors
*/
package deposits

import (
	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
)

// =============================================================================
// STATE - Derived, never stored
// =============================================================================

type State string

const (
	StateHeld          State = "held"
	StateToBeReturned  State = "to_be_returned"
	StateReturned      State = "returned"
	StatePartialReturn State = "partial_return"
)

// overdueAfterDays is how long a pending return may sit after move-out
// before the dashboard flags it.
const overdueAfterDays = 30

// Evaluation is the derived deposit view for one tenant.
type Evaluation struct {
	TenantID         engine.TenantID
	State            State
	Deposit          decimal.Decimal
	Refunded         decimal.Decimal
	Overdue          bool
	DaysSinceMoveOut int
}

// Evaluate derives the deposit state for a tenant as of today. The second
// return value is false when the tenant has no positive deposit amount and
// must be skipped by reporting.
func Evaluate(t engine.Tenant, today engine.Date) (Evaluation, bool) {
	if !t.HasDeposit() {
		return Evaluation{}, false
	}

	deposit := *t.DepositAmount
	refunded := decimal.Zero
	if t.DepositRefundedAmount != nil {
		refunded = *t.DepositRefundedAmount
	}

	ev := Evaluation{
		TenantID: t.ID,
		Deposit:  deposit,
		Refunded: refunded,
	}

	switch {
	case refunded.GreaterThanOrEqual(deposit) && t.DepositRefundedDate != nil:
		ev.State = StateReturned
	case refunded.IsPositive() && refunded.LessThan(deposit):
		ev.State = StatePartialReturn
	case !t.IsActive && t.MoveOutDate != nil && t.MoveOutDate.BeforeOrEqual(today):
		ev.State = StateToBeReturned
	default:
		ev.State = StateHeld
	}

	if t.MoveOutDate != nil && t.MoveOutDate.BeforeOrEqual(today) {
		ev.DaysSinceMoveOut = engine.DaysBetween(*t.MoveOutDate, today)
	}
	ev.Overdue = ev.State == StateToBeReturned && ev.DaysSinceMoveOut > overdueAfterDays

	return ev, true
}

// =============================================================================
// RETURN WORKFLOW
// =============================================================================

// OverRefundPolicy decides what to do with a refund exceeding the deposit.
// The historical behavior is Accept (goodwill over-refunds happen); Reject
// and Clamp are available for operators who want the guard.
type OverRefundPolicy string

const (
	PolicyAccept OverRefundPolicy = "accept"
	PolicyClamp  OverRefundPolicy = "clamp"
	PolicyReject OverRefundPolicy = "reject"
)

// Return records a deposit refund on the tenant. A partial amount produces
// the partial_return state on the next read. Notes are returned to the
// caller for appending to the tenant's note log; prior notes are never
// overwritten.
func Return(t *engine.Tenant, amount decimal.Decimal, date engine.Date, policy OverRefundPolicy) error {
	if !t.HasDeposit() {
		return engine.ErrNoDeposit
	}
	if !amount.IsPositive() {
		return &engine.RefundError{
			TenantID: t.ID,
			Amount:   amount,
			Deposit:  *t.DepositAmount,
			Reason:   engine.ErrInvalidRefund,
		}
	}

	if amount.GreaterThan(*t.DepositAmount) {
		switch policy {
		case PolicyReject:
			return &engine.RefundError{
				TenantID: t.ID,
				Amount:   amount,
				Deposit:  *t.DepositAmount,
				Reason:   engine.ErrRefundExceedsDeposit,
			}
		case PolicyClamp:
			amount = *t.DepositAmount
		}
		// PolicyAccept: write as-is
	}

	t.DepositRefundedAmount = &amount
	t.DepositRefundedDate = &date
	return nil
}
