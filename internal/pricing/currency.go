package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO code a price is billed in or displayed in.
type Currency string

const (
	USD Currency = "USD"
	CNY Currency = "CNY"
)

// DefaultExchangeRate is how many CNY one USD buys.
const DefaultExchangeRate = 7.2

// Placeholder stands in for a price the provider does not publish.
const Placeholder = "—"

// ErrUnknownCurrency is returned by ParseCurrency for anything but USD or CNY.
var ErrUnknownCurrency = errors.New("unknown currency")

// ParseCurrency accepts "usd", "cny" or "rmb" in any case.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USD":
		return USD, nil
	case "CNY", "RMB":
		return CNY, nil
	default:
		return "", fmt.Errorf("%w: %q (want USD or CNY)", ErrUnknownCurrency, s)
	}
}

// Symbol returns the prefix used when formatting amounts.
func (c Currency) Symbol() string {
	if c == USD {
		return "$"
	}
	return "￥"
}

// Other returns the opposite currency of the USD/CNY pair.
func (c Currency) Other() Currency {
	if c == USD {
		return CNY
	}
	return USD
}

// Converter converts prices between USD and CNY at a fixed rate.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter returns a converter for the given USD→CNY rate. The rate
// must be a positive finite number.
func NewConverter(rate float64) (*Converter, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return nil, fmt.Errorf("exchange rate must be positive, got %v", rate)
	}
	return &Converter{rate: decimal.NewFromFloat(rate)}, nil
}

// Rate returns the USD→CNY rate.
func (c *Converter) Rate() float64 {
	return c.rate.InexactFloat64()
}

// Convert turns a price billed in billing into the display currency.
func (c *Converter) Convert(price float64, billing, display Currency) float64 {
	if billing == display {
		return price
	}

	p := decimal.NewFromFloat(price)
	switch {
	case billing == USD && display == CNY:
		return p.Mul(c.rate).InexactFloat64()
	case billing == CNY && display == USD:
		return p.Div(c.rate).InexactFloat64()
	default:
		return price
	}
}

// ConvertOptional converts a price that may be absent. nil stays nil.
func (c *Converter) ConvertOptional(price *float64, billing, display Currency) *float64 {
	if price == nil {
		return nil
	}
	v := c.Convert(*price, billing, display)
	return &v
}

// Convert is the stateless form of Converter.Convert.
func Convert(price float64, billing, display Currency, rate float64) float64 {
	c, err := NewConverter(rate)
	if err != nil {
		return price
	}
	return c.Convert(price, billing, display)
}

// FormatPrice renders an amount already expressed in display with two
// decimals and the currency symbol, e.g. "$2.50" or "￥18.00".
func FormatPrice(price float64, display Currency) string {
	return display.Symbol() + decimal.NewFromFloat(price).StringFixed(2)
}

// FormatOptionalPrice is FormatPrice for an absent-able amount.
func FormatOptionalPrice(price *float64, display Currency) string {
	if price == nil {
		return Placeholder
	}
	return FormatPrice(*price, display)
}
