/*
Package lease implements the proration and charge composer feeding lease
contracts and rent receipts.

PURPOSE:
  Given the lease's entry date, monthly rent, charge breakdown and a
  point-in-time CHF/EUR exchange rate, compute every numeric field the
  document renderer needs: EUR equivalents, the charge total, the prorated
  first-period amount and the fixed one-year term end.

PRORATION:
  When the entry date is not the first of its month:

    days_occupied = (last_day_of_month - entry_date) + 1
    prorated      = round2(monthly_rent * days_occupied / days_in_month)

  When the entry date IS the first, proration is skipped entirely. The
  formula would yield the full amount anyway, but the explicit branch keeps
  repeated reads free of rounding drift.

CURRENCY:
  One rule everywhere: EUR = CHF / rate (rate is CHF per 1 EUR). All
  monetary outputs are rounded half-up to the cent at computation time.

SEE ALSO:
  - engine: conversion and calendar helpers
*/
package lease

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
)

// TermMonths is the fixed lease term. Tacit renewal is handled entirely
// outside this package.
const TermMonths = 12

// =============================================================================
// CHARGE SET - Input shape from the lease record
// =============================================================================

type ChargeSet struct {
	LoyerCHF           decimal.Decimal // base monthly rent
	ChargesEnergy      decimal.Decimal
	ChargesMaintenance decimal.Decimal
	ChargesServices    decimal.Decimal
	ExchangeRate       decimal.Decimal // CHF per 1 EUR, point-in-time
	EntryDate          engine.Date
}

// =============================================================================
// COMPOSITION - Output consumed by the document renderer
// =============================================================================

// Proration is the first-period partial amount, present only when the entry
// date is not the first of its month.
type Proration struct {
	DaysOccupied int
	DaysInMonth  int
	AmountCHF    decimal.Decimal
	AmountEUR    decimal.Decimal
	PeriodEnd    engine.Date
}

type Composition struct {
	LoyerCHF decimal.Decimal
	LoyerEUR decimal.Decimal

	ChargesTotalCHF decimal.Decimal
	ChargesTotalEUR decimal.Decimal

	TotalMonthlyCHF decimal.Decimal // rent + charges
	TotalMonthlyEUR decimal.Decimal

	EntryDate engine.Date
	EndDate   engine.Date // entry + 12 months

	Prorata *Proration // nil when entry is the first of the month
}

// Compose computes all derived lease amounts. The only failure mode is an
// unusable exchange rate; everything else is arithmetic.
func Compose(cs ChargeSet) (Composition, error) {
	if !cs.ExchangeRate.IsPositive() {
		return Composition{}, &engine.RateError{Rate: cs.ExchangeRate}
	}

	toEUR := func(chf decimal.Decimal) decimal.Decimal {
		return chf.Div(cs.ExchangeRate).Round(2)
	}

	chargesCHF := cs.ChargesEnergy.Add(cs.ChargesMaintenance).Add(cs.ChargesServices)

	c := Composition{
		LoyerCHF:        cs.LoyerCHF.Round(2),
		LoyerEUR:        toEUR(cs.LoyerCHF),
		ChargesTotalCHF: chargesCHF.Round(2),
		ChargesTotalEUR: toEUR(chargesCHF),
		EntryDate:       cs.EntryDate,
		EndDate:         cs.EntryDate.AddMonths(TermMonths),
	}
	c.TotalMonthlyCHF = c.LoyerCHF.Add(c.ChargesTotalCHF)
	c.TotalMonthlyEUR = toEUR(cs.LoyerCHF.Add(chargesCHF))

	// Full first month when moving in on the 1st: skip proration entirely
	// instead of running the degenerate formula.
	if !cs.EntryDate.IsFirstOfMonth() {
		periodEnd := engine.EndOfMonth(cs.EntryDate)
		daysOccupied := engine.DaysBetween(cs.EntryDate, periodEnd) + 1
		daysInMonth := engine.DaysInMonth(cs.EntryDate)

		ratio := decimal.NewFromInt(int64(daysOccupied)).Div(decimal.NewFromInt(int64(daysInMonth)))
		proratedCHF := cs.LoyerCHF.Mul(ratio).Round(2)

		c.Prorata = &Proration{
			DaysOccupied: daysOccupied,
			DaysInMonth:  daysInMonth,
			AmountCHF:    proratedCHF,
			AmountEUR:    toEUR(cs.LoyerCHF.Mul(ratio)),
			PeriodEnd:    periodEnd,
		}
	}

	return c, nil
}

// =============================================================================
// RECEIPT NUMBERING
// =============================================================================

// ReceiptNumber builds the reference printed on a rent receipt (quittance).
// Deterministic for a (tenant, month) pair so regenerating a document never
// changes its number.
func ReceiptNumber(tenantID engine.TenantID, month string) string {
	seed := uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(tenantID)+"/"+month))
	compact := month[:4] + month[5:]
	return fmt.Sprintf("LVC-%s-%s", compact, seed.String()[:8])
}
