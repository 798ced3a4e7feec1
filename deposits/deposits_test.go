package deposits_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/deposits"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func tenantWithDeposit(amount string) engine.Tenant {
	d := dec(amount)
	return engine.Tenant{
		ID:            "t-1",
		IsActive:      true,
		DepositAmount: &d,
	}
}

// =============================================================================
// STATE DERIVATION TESTS
// =============================================================================

func TestEvaluate_ActiveTenant_Held(t *testing.T) {
	tenant := tenantWithDeposit("2760")
	today := engine.NewDate(2025, time.February, 5)

	ev, ok := deposits.Evaluate(tenant, today)

	require.True(t, ok)
	assert.Equal(t, deposits.StateHeld, ev.State)
	assert.False(t, ev.Overdue)
}

func TestEvaluate_MovedOut_ToBeReturned_Overdue(t *testing.T) {
	// GIVEN: deposit 2760, inactive, moved out 2025-01-01, no refund fields
	// WHEN: Evaluated on 2025-02-05
	// THEN: to_be_returned and overdue (35 days > 30)

	tenant := tenantWithDeposit("2760")
	tenant.IsActive = false
	moveOut := engine.NewDate(2025, time.January, 1)
	tenant.MoveOutDate = &moveOut

	ev, ok := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 5))

	require.True(t, ok)
	assert.Equal(t, deposits.StateToBeReturned, ev.State)
	assert.Equal(t, 35, ev.DaysSinceMoveOut)
	assert.True(t, ev.Overdue)
}

func TestEvaluate_MovedOut_WithinGracePeriod_NotOverdue(t *testing.T) {
	tenant := tenantWithDeposit("2760")
	tenant.IsActive = false
	moveOut := engine.NewDate(2025, time.January, 10)
	tenant.MoveOutDate = &moveOut

	ev, _ := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 5))

	assert.Equal(t, deposits.StateToBeReturned, ev.State)
	assert.Equal(t, 26, ev.DaysSinceMoveOut)
	assert.False(t, ev.Overdue)
}

func TestEvaluate_FutureMoveOut_StillHeld(t *testing.T) {
	// A notice period in progress: inactive flag set but move-out in the future.
	tenant := tenantWithDeposit("2760")
	tenant.IsActive = false
	moveOut := engine.NewDate(2025, time.March, 31)
	tenant.MoveOutDate = &moveOut

	ev, _ := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 5))
	assert.Equal(t, deposits.StateHeld, ev.State)
}

func TestEvaluate_FullRefund_Returned(t *testing.T) {
	tenant := tenantWithDeposit("2760")
	tenant.IsActive = false
	moveOut := engine.NewDate(2025, time.January, 1)
	tenant.MoveOutDate = &moveOut
	refunded := dec("2760")
	refundDate := engine.NewDate(2025, time.January, 20)
	tenant.DepositRefundedAmount = &refunded
	tenant.DepositRefundedDate = &refundDate

	ev, _ := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 5))
	assert.Equal(t, deposits.StateReturned, ev.State)
	assert.False(t, ev.Overdue)
}

func TestEvaluate_Returned_NeverReappearsInOtherBuckets(t *testing.T) {
	// Once returned, later reads must never drift back to held/to_be_returned.
	tenant := tenantWithDeposit("2760")
	tenant.IsActive = false
	moveOut := engine.NewDate(2025, time.January, 1)
	tenant.MoveOutDate = &moveOut
	refunded := dec("2800") // goodwill over-refund
	refundDate := engine.NewDate(2025, time.January, 20)
	tenant.DepositRefundedAmount = &refunded
	tenant.DepositRefundedDate = &refundDate

	for _, today := range []engine.Date{
		engine.NewDate(2025, time.February, 5),
		engine.NewDate(2025, time.June, 1),
		engine.NewDate(2026, time.January, 1),
	} {
		ev, _ := deposits.Evaluate(tenant, today)
		assert.Equal(t, deposits.StateReturned, ev.State, "as of %s", today)
	}
}

func TestEvaluate_PartialRefund(t *testing.T) {
	tenant := tenantWithDeposit("2760")
	refunded := dec("1000")
	tenant.DepositRefundedAmount = &refunded

	ev, _ := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 5))
	assert.Equal(t, deposits.StatePartialReturn, ev.State)
}

func TestEvaluate_NoDeposit_Excluded(t *testing.T) {
	_, ok := deposits.Evaluate(engine.Tenant{ID: "t-1", IsActive: true}, engine.Today())
	assert.False(t, ok)

	zero := decimal.Zero
	_, ok = deposits.Evaluate(engine.Tenant{ID: "t-2", DepositAmount: &zero}, engine.Today())
	assert.False(t, ok)
}

// =============================================================================
// RETURN WORKFLOW TESTS
// =============================================================================

func TestReturn_WritesRefundFields(t *testing.T) {
	tenant := tenantWithDeposit("2760")
	date := engine.NewDate(2025, time.February, 10)

	err := deposits.Return(&tenant, dec("2760"), date, deposits.PolicyAccept)

	require.NoError(t, err)
	require.NotNil(t, tenant.DepositRefundedAmount)
	assert.True(t, tenant.DepositRefundedAmount.Equal(dec("2760")))
	assert.Equal(t, date, *tenant.DepositRefundedDate)
}

func TestReturn_PartialAmount_Allowed(t *testing.T) {
	tenant := tenantWithDeposit("2760")

	err := deposits.Return(&tenant, dec("1500"), engine.NewDate(2025, time.February, 10), deposits.PolicyAccept)
	require.NoError(t, err)

	ev, _ := deposits.Evaluate(tenant, engine.NewDate(2025, time.February, 11))
	assert.Equal(t, deposits.StatePartialReturn, ev.State)
}

func TestReturn_NonPositiveAmount_Rejected(t *testing.T) {
	for _, raw := range []string{"0", "-100"} {
		tenant := tenantWithDeposit("2760")
		err := deposits.Return(&tenant, dec(raw), engine.Today(), deposits.PolicyAccept)

		assert.ErrorIs(t, err, engine.ErrInvalidRefund, "amount %s", raw)
		assert.Nil(t, tenant.DepositRefundedAmount, "write must not happen")
	}
}

func TestReturn_OverDeposit_PolicyMatrix(t *testing.T) {
	over := dec("3000")

	// Accept: written as-is
	tenant := tenantWithDeposit("2760")
	require.NoError(t, deposits.Return(&tenant, over, engine.Today(), deposits.PolicyAccept))
	assert.True(t, tenant.DepositRefundedAmount.Equal(dec("3000")))

	// Clamp: capped at the deposit
	tenant = tenantWithDeposit("2760")
	require.NoError(t, deposits.Return(&tenant, over, engine.Today(), deposits.PolicyClamp))
	assert.True(t, tenant.DepositRefundedAmount.Equal(dec("2760")))

	// Reject: refused, nothing written
	tenant = tenantWithDeposit("2760")
	err := deposits.Return(&tenant, over, engine.Today(), deposits.PolicyReject)
	assert.ErrorIs(t, err, engine.ErrRefundExceedsDeposit)
	assert.Nil(t, tenant.DepositRefundedAmount)
}

func TestReturn_NoDeposit(t *testing.T) {
	tenant := engine.Tenant{ID: "t-1"}
	err := deposits.Return(&tenant, dec("100"), engine.Today(), deposits.PolicyAccept)
	assert.ErrorIs(t, err, engine.ErrNoDeposit)
}
