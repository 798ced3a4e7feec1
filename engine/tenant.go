package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TENANT - A person occupying a room under a lease
// =============================================================================
// Raw record shape owned by the data store. The calculators derive view-state
// (deposit state, revision projections, reminders) from these fields; they
// never mutate them outside the explicit operator workflows.

type Tenant struct {
	ID         TenantID
	PropertyID PropertyID
	Name       string
	Email      string
	Phone      string
	RoomNumber string

	CurrentRent decimal.Decimal // CHF, monthly
	DueDay      int             // 1-28, day of month rent is due
	IsActive    bool

	MoveInDate  Date
	MoveOutDate *Date
	DateOfBirth *Date

	DepositAmount         *decimal.Decimal
	DepositReceivedDate   *Date
	DepositRefundedAmount *decimal.Decimal
	DepositRefundedDate   *Date
}

// HasDeposit reports whether the tenant participates in deposit reporting.
// A missing or non-positive deposit amount excludes the tenant entirely;
// this is not an error.
func (t Tenant) HasDeposit() bool {
	return t.DepositAmount != nil && t.DepositAmount.IsPositive()
}

// LeaseAnniversary is the yearly recurrence of the move-in date, used as the
// rent-revision trigger point.
func (t Tenant) LeaseAnniversary(today Date) Occurrence {
	return NextOccurrence(t.MoveInDate.MonthDay(), today)
}
