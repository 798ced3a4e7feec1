/*
Package engine provides the core value types for the lease financial engine.

PURPOSE:
  This package contains the domain-agnostic building blocks shared by every
  calculator in the system: decimal money with a currency tag, CHF/EUR
  conversion, day-granularity dates, and the recurring-date scheduler used
  for lease anniversaries and birthday reminders.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount:   A monetary quantity with a currency (e.g., 1380.00 CHF)
  - Currency: CHF (the billing currency) or EUR (the display currency)
  - Conversion: EUR = CHF / rate, where rate is CHF per 1 EUR

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64, for money
  2. Rounding at computation: every monetary output is rounded to 2 decimal
     places (half-up) where it is computed, so repeated reads are stable
  3. One conversion rule: a single division converts CHF to EUR everywhere;
     mixing multiplication and division per field is a correctness bug

USAGE:
  rent := engine.CHF(decimal.NewFromInt(1380))
  eur, err := engine.ToEUR(rent, rate)

SEE ALSO:
  - time.go: Date value type and calendar helpers
  - schedule.go: Recurring annual date scheduler
  - errors.go: Sentinel errors shared by the domain packages
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

type Currency string

const (
	CurrencyCHF Currency = "CHF"
	CurrencyEUR Currency = "EUR"
)

// =============================================================================
// AMOUNT - Monetary quantity with currency
// =============================================================================

type Amount struct {
	Value    decimal.Decimal
	Currency Currency
}

func CHF(v decimal.Decimal) Amount { return Amount{Value: v, Currency: CurrencyCHF} }
func EUR(v decimal.Decimal) Amount { return Amount{Value: v, Currency: CurrencyEUR} }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Currency: a.Currency} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Currency: a.Currency} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Currency: a.Currency} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Round2 rounds to 2 decimal places, half away from zero. Amounts in this
// system are non-negative, so this is standard half-up rounding.
func (a Amount) Round2() Amount {
	return Amount{Value: a.Value.Round(2), Currency: a.Currency}
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value.StringFixed(2), a.Currency)
}

// =============================================================================
// CURRENCY CONVERSION
// =============================================================================

// ToEUR converts a CHF amount to EUR given a point-in-time exchange rate
// expressed as CHF per 1 EUR. The result is rounded to the cent.
func ToEUR(chf Amount, rate decimal.Decimal) (Amount, error) {
	if !rate.IsPositive() {
		return Amount{}, &RateError{Rate: rate}
	}
	return Amount{Value: chf.Value.Div(rate).Round(2), Currency: CurrencyEUR}, nil
}

// ToCHF is the inverse conversion, used for round-trip checks and the rare
// EUR-denominated manual entry.
func ToCHF(eur Amount, rate decimal.Decimal) (Amount, error) {
	if !rate.IsPositive() {
		return Amount{}, &RateError{Rate: rate}
	}
	return Amount{Value: eur.Value.Mul(rate).Round(2), Currency: CurrencyCHF}, nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TenantID string
type PropertyID string
type PaymentID string
