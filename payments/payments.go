/*
Package payments implements the rent payment status model.

PURPOSE:
  One Payment row exists per (tenant, month). Operators record what actually
  arrived; the model exposes the effective amount and the manual status cycle
  used for quick corrections from the dashboard.

KEY DESIGN CHOICE - Manual status authority:
  Status is operator-set, NOT derived from the amounts. A payment can be
  marked late for a non-monetary reason, or paid while the recorded amount
  still lags the bank statement. Cycle() advances the status through a fixed
  order; Reconcile() reports disagreements between status and amounts as
  warnings without ever correcting them.

SEE ALSO:
  - summary.go: Per-month aggregates (collection rate, outstanding)
  - engine: Amount, Date, identifiers
*/
package payments

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
)

// =============================================================================
// STATUS - Fixed manual cycle
// =============================================================================

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusLate    Status = "late"
	StatusUnpaid  Status = "unpaid"
)

// statusCycle is the order Cycle() walks through. This is a manual override
// control for operators, not a state machine driven by amounts.
var statusCycle = []Status{StatusPending, StatusPaid, StatusPartial, StatusLate, StatusUnpaid}

// Next returns the status following s in the fixed cycle. Unknown statuses
// reset to pending.
func (s Status) Next() Status {
	for i, cur := range statusCycle {
		if cur == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusPending
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	for _, cur := range statusCycle {
		if cur == s {
			return true
		}
	}
	return false
}

// =============================================================================
// PAYMENT - One expected rent charge for one tenant for one month
// =============================================================================

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether m is a YYYY-MM month key.
func ValidMonth(m string) bool { return monthPattern.MatchString(m) }

type Payment struct {
	ID       engine.PaymentID
	TenantID engine.TenantID
	Month    string // YYYY-MM, unique per tenant

	Expected decimal.Decimal
	Received decimal.Decimal
	Adjusted *decimal.Decimal // manual override, wins over Received

	PaymentDate *engine.Date
	Status      Status
	Notes       string
}

// EffectiveAmount is the authoritative "money actually counted" value:
// the manual adjustment when present, the received amount otherwise.
// Aggregates must never sum Received directly when an adjustment exists.
func (p Payment) EffectiveAmount() decimal.Decimal {
	if p.Adjusted != nil {
		return *p.Adjusted
	}
	return p.Received
}

// Cycle advances the payment status one step in the fixed cycle.
func (p *Payment) Cycle() Status {
	p.Status = p.Status.Next()
	return p.Status
}

// =============================================================================
// RECONCILIATION WARNINGS
// =============================================================================
// Status and amounts are expected to correlate, but the model never corrects
// one from the other. Reconcile reports disagreements for the dashboard.

type Anomaly struct {
	PaymentID engine.PaymentID
	Code      string
	Message   string
}

func Reconcile(p Payment) []Anomaly {
	var anomalies []Anomaly
	effective := p.EffectiveAmount()

	if p.Status == StatusPaid && effective.LessThan(p.Expected) {
		anomalies = append(anomalies, Anomaly{
			PaymentID: p.ID,
			Code:      "paid_below_expected",
			Message:   "marked paid but effective amount is below expected",
		})
	}
	if (p.Status == StatusUnpaid || p.Status == StatusPending) && effective.IsPositive() {
		anomalies = append(anomalies, Anomaly{
			PaymentID: p.ID,
			Code:      "money_without_status",
			Message:   "money recorded but status is " + string(p.Status),
		})
	}
	if p.Status == StatusPartial && (effective.IsZero() || effective.GreaterThanOrEqual(p.Expected)) {
		anomalies = append(anomalies, Anomaly{
			PaymentID: p.ID,
			Code:      "partial_amount_mismatch",
			Message:   "marked partial but effective amount is not strictly between 0 and expected",
		})
	}
	return anomalies
}
