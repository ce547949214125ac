package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string { return c.code }

// String returns the currency code.
func (c Currency) String() string { return c.code }

// Symbol returns the display prefix for the currency. Currencies without a
// dedicated glyph are prefixed with their code.
func (c Currency) Symbol() string {
	if s, ok := symbols[c.code]; ok {
		return s
	}
	return c.code
}

// Common currencies.
var (
	NGN = MustCurrency("NGN")
	USD = MustCurrency("USD")
)

var symbols = map[string]string{
	"NGN": "₦",
}

// Money represents an immutable monetary amount with currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency.
func (m Money) Currency() Currency { return m.currency }

// Display renders the amount the way applicants see it, e.g. "₦1,650,000" or
// "USD1,234.5". At most two fraction digits are kept and trailing zeros dropped.
func (m Money) Display() string {
	return m.currency.Symbol() + FormatAmount(m.amount)
}

var printer = message.NewPrinter(language.English)

// FormatAmount groups the integer part with thousands separators.
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// Display is a shorthand for New(amount, currency).Display() that tolerates
// unknown or malformed currency codes by using the code verbatim.
func Display(amount decimal.Decimal, code string) string {
	cur, err := NewCurrency(code)
	if err != nil {
		return code + FormatAmount(amount)
	}
	return New(amount, cur).Display()
}
