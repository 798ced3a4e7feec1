/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY ON THE WIRE:
  Monetary fields are JSON strings ("1419.15"), never floats. The dashboard
  renders them verbatim; parsing happens only on input.

VALIDATION:
  Request types carry validate struct tags consumed by go-playground
  validator in the handlers. DTOs stay pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine: domain record shapes
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/deposits"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/lease"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/payments"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/reminders"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/revision"
)

// =============================================================================
// TENANT TYPES
// =============================================================================

// TenantDTO represents a tenant in API responses.
type TenantDTO struct {
	ID          string `json:"id"`
	PropertyID  string `json:"property_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
	CurrentRent string `json:"current_rent"`
	DueDay      int    `json:"due_day"`
	IsActive    bool   `json:"is_active"`

	MoveInDate  string  `json:"move_in_date"`
	MoveOutDate *string `json:"move_out_date,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`

	DepositAmount         *string `json:"deposit_amount,omitempty"`
	DepositReceivedDate   *string `json:"deposit_received_date,omitempty"`
	DepositRefundedAmount *string `json:"deposit_refunded_amount,omitempty"`
	DepositRefundedDate   *string `json:"deposit_refunded_date,omitempty"`
}

// CreateTenantRequest is the request to create or replace a tenant.
type CreateTenantRequest struct {
	ID          string `json:"id"`
	PropertyID  string `json:"property_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	RoomNumber  string `json:"room_number"`
	CurrentRent string `json:"current_rent" validate:"required"`
	DueDay      int    `json:"due_day" validate:"required,min=1,max=28"`
	IsActive    *bool  `json:"is_active"`

	MoveInDate  string  `json:"move_in_date" validate:"required"`
	MoveOutDate *string `json:"move_out_date"`
	DateOfBirth *string `json:"date_of_birth"`

	DepositAmount       *string `json:"deposit_amount"`
	DepositReceivedDate *string `json:"deposit_received_date"`
}

// =============================================================================
// DEPOSIT TYPES
// =============================================================================

// DepositDTO is the derived deposit view for one tenant.
type DepositDTO struct {
	TenantID         string `json:"tenant_id"`
	TenantName       string `json:"tenant_name"`
	State            string `json:"state"`
	Deposit          string `json:"deposit"`
	Refunded         string `json:"refunded"`
	Overdue          bool   `json:"overdue"`
	DaysSinceMoveOut int    `json:"days_since_move_out"`
}

// DepositBucketsDTO groups the dashboard deposit report by derived state.
type DepositBucketsDTO struct {
	Held          []DepositDTO `json:"held"`
	ToBeReturned  []DepositDTO `json:"to_be_returned"`
	Returned      []DepositDTO `json:"returned"`
	PartialReturn []DepositDTO `json:"partial_return"`
}

// DepositReturnRequest records a deposit refund.
type DepositReturnRequest struct {
	Amount string `json:"amount" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Notes  string `json:"notes"`
}

// =============================================================================
// REVISION TYPES
// =============================================================================

// IndexEntryDTO is one quarterly index value.
type IndexEntryDTO struct {
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	Value        string `json:"value"`
	VariationPct string `json:"variation_pct"`
}

// UpsertIndexRequest publishes a quarterly index value.
type UpsertIndexRequest struct {
	Year         int    `json:"year" validate:"required,min=2000"`
	Quarter      int    `json:"quarter" validate:"required,min=1,max=4"`
	Value        string `json:"value" validate:"required"`
	VariationPct string `json:"variation_pct"`
}

// RevisionDTO is a rent-revision projection for one tenant.
type RevisionDTO struct {
	TenantID    string        `json:"tenant_id"`
	CurrentRent string        `json:"current_rent"`
	NewRent     string        `json:"new_rent"`
	IncreasePct string        `json:"increase_pct"`
	Latest      IndexEntryDTO `json:"latest"`
	Prior       IndexEntryDTO `json:"prior"`
	Anniversary string        `json:"anniversary"`
	DaysUntil   int           `json:"days_until"`
}

// ApplyRevisionRequest overwrites the tenant's rent with the revised amount.
type ApplyRevisionRequest struct {
	NewRent string `json:"new_rent" validate:"required"`
}

// =============================================================================
// LEASE TYPES
// =============================================================================

// ProrationDTO is the first-period partial amount.
type ProrationDTO struct {
	DaysOccupied int    `json:"days_occupied"`
	DaysInMonth  int    `json:"days_in_month"`
	AmountCHF    string `json:"amount_chf"`
	AmountEUR    string `json:"amount_eur"`
	PeriodEnd    string `json:"period_end"`
}

// LeaseDTO carries every numeric field the document renderer needs.
type LeaseDTO struct {
	TenantID string `json:"tenant_id"`

	LoyerCHF        string `json:"loyer_chf"`
	LoyerEUR        string `json:"loyer_eur"`
	ChargesTotalCHF string `json:"charges_total_chf"`
	ChargesTotalEUR string `json:"charges_total_eur"`
	TotalMonthlyCHF string `json:"total_monthly_chf"`
	TotalMonthlyEUR string `json:"total_monthly_eur"`
	ExchangeRate    string `json:"exchange_rate"`

	EntryDate string        `json:"entry_date"`
	EndDate   string        `json:"end_date"`
	Prorata   *ProrationDTO `json:"prorata,omitempty"`

	ReceiptNumber string `json:"receipt_number,omitempty"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// PaymentDTO represents one monthly payment row.
type PaymentDTO struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenant_id"`
	Month       string  `json:"month"`
	Expected    string  `json:"expected"`
	Received    string  `json:"received"`
	Adjusted    *string `json:"adjusted,omitempty"`
	Effective   string  `json:"effective"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes,omitempty"`
}

// UpsertPaymentRequest is the operator entry for a (tenant, month) row.
type UpsertPaymentRequest struct {
	TenantID    string  `json:"tenant_id" validate:"required"`
	Month       string  `json:"month" validate:"required"`
	Expected    string  `json:"expected" validate:"required"`
	Received    string  `json:"received"`
	Adjusted    *string `json:"adjusted"`
	PaymentDate *string `json:"payment_date"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes"`
}

// SummaryDTO aggregates one month of payments.
type SummaryDTO struct {
	Month          string `json:"month"`
	Expected       string `json:"expected"`
	Collected      string `json:"collected"`
	Partial        string `json:"partial"`
	Late           string `json:"late"`
	Unpaid         string `json:"unpaid"`
	Outstanding    string `json:"outstanding"`
	CollectionRate int    `json:"collection_rate"`
	Count          int    `json:"count"`
}

// AnomalyDTO flags an inconsistent payment row for operator review.
type AnomalyDTO struct {
	PaymentID string `json:"payment_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// PaymentsResponse is the month view: rows plus aggregate plus anomalies.
type PaymentsResponse struct {
	Payments  []PaymentDTO `json:"payments"`
	Summary   SummaryDTO   `json:"summary"`
	Anomalies []AnomalyDTO `json:"anomalies,omitempty"`
}

// CycleResponse is the result of advancing a payment's status.
type CycleResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// =============================================================================
// REMINDER / ADMIN TYPES
// =============================================================================

// ReminderDTO is one entry of the dashboard reminder feed.
type ReminderDTO struct {
	Kind       string  `json:"kind"`
	TenantID   string  `json:"tenant_id"`
	TenantName string  `json:"tenant_name"`
	Date       string  `json:"date"`
	DaysUntil  int     `json:"days_until"`
	NewRent    *string `json:"new_rent,omitempty"`
	Pct        *string `json:"pct,omitempty"`
}

// EnsureMonthRequest generates missing pending payment rows.
type EnsureMonthRequest struct {
	PropertyID string `json:"property_id"`
	Month      string `json:"month" validate:"required"`
}

// EnsureMonthResponse reports how many rows were created.
type EnsureMonthResponse struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func optMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func optDate(d *engine.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func toTenantDTO(t engine.Tenant) TenantDTO {
	return TenantDTO{
		ID:                    string(t.ID),
		PropertyID:            string(t.PropertyID),
		Name:                  t.Name,
		Email:                 t.Email,
		Phone:                 t.Phone,
		RoomNumber:            t.RoomNumber,
		CurrentRent:           money(t.CurrentRent),
		DueDay:                t.DueDay,
		IsActive:              t.IsActive,
		MoveInDate:            t.MoveInDate.String(),
		MoveOutDate:           optDate(t.MoveOutDate),
		DateOfBirth:           optDate(t.DateOfBirth),
		DepositAmount:         optMoney(t.DepositAmount),
		DepositReceivedDate:   optDate(t.DepositReceivedDate),
		DepositRefundedAmount: optMoney(t.DepositRefundedAmount),
		DepositRefundedDate:   optDate(t.DepositRefundedDate),
	}
}

func toDepositDTO(t engine.Tenant, ev deposits.Evaluation) DepositDTO {
	return DepositDTO{
		TenantID:         string(ev.TenantID),
		TenantName:       t.Name,
		State:            string(ev.State),
		Deposit:          money(ev.Deposit),
		Refunded:         money(ev.Refunded),
		Overdue:          ev.Overdue,
		DaysSinceMoveOut: ev.DaysSinceMoveOut,
	}
}

func toIndexEntryDTO(e revision.IndexEntry) IndexEntryDTO {
	return IndexEntryDTO{
		Year:         e.Year,
		Quarter:      e.Quarter,
		Value:        e.Value.String(),
		VariationPct: e.VariationPct.String(),
	}
}

func toPaymentDTO(p payments.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          string(p.ID),
		TenantID:    string(p.TenantID),
		Month:       p.Month,
		Expected:    money(p.Expected),
		Received:    money(p.Received),
		Adjusted:    optMoney(p.Adjusted),
		Effective:   money(p.EffectiveAmount()),
		PaymentDate: optDate(p.PaymentDate),
		Status:      string(p.Status),
		Notes:       p.Notes,
	}
}

func toSummaryDTO(s payments.MonthSummary) SummaryDTO {
	return SummaryDTO{
		Month:          s.Month,
		Expected:       money(s.Expected),
		Collected:      money(s.Collected),
		Partial:        money(s.Partial),
		Late:           money(s.Late),
		Unpaid:         money(s.Unpaid),
		Outstanding:    money(s.Outstanding()),
		CollectionRate: s.CollectionRate,
		Count:          s.Count,
	}
}

func toLeaseDTO(tenantID engine.TenantID, rate decimal.Decimal, c lease.Composition) LeaseDTO {
	dto := LeaseDTO{
		TenantID:        string(tenantID),
		LoyerCHF:        money(c.LoyerCHF),
		LoyerEUR:        money(c.LoyerEUR),
		ChargesTotalCHF: money(c.ChargesTotalCHF),
		ChargesTotalEUR: money(c.ChargesTotalEUR),
		TotalMonthlyCHF: money(c.TotalMonthlyCHF),
		TotalMonthlyEUR: money(c.TotalMonthlyEUR),
		ExchangeRate:    rate.String(),
		EntryDate:       c.EntryDate.String(),
		EndDate:         c.EndDate.String(),
	}
	if c.Prorata != nil {
		dto.Prorata = &ProrationDTO{
			DaysOccupied: c.Prorata.DaysOccupied,
			DaysInMonth:  c.Prorata.DaysInMonth,
			AmountCHF:    money(c.Prorata.AmountCHF),
			AmountEUR:    money(c.Prorata.AmountEUR),
			PeriodEnd:    c.Prorata.PeriodEnd.String(),
		}
	}
	return dto
}

func toReminderDTO(r reminders.Reminder) ReminderDTO {
	return ReminderDTO{
		Kind:       string(r.Kind),
		TenantID:   string(r.TenantID),
		TenantName: r.TenantName,
		Date:       r.Date.String(),
		DaysUntil:  r.DaysUntil,
		NewRent:    optMoney(r.NewRent),
		Pct:        optMoney(r.Pct),
	}
}
