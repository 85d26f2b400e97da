// Package core provides the transaction model and the formatting used to
// turn raw records into display strings.
//
// This file contains the locale-aware currency and date formatter.
package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout renders dates as dd/MM/yyyy.
const DateLayout = "02/01/2006"

// FormatterConfig selects locale, currency and time zone for display strings.
type FormatterConfig struct {
	Locale   string // BCP-47 tag, e.g. "pt-BR"
	Currency string // ISO 4217 code, e.g. "BRL"
	Symbol   string // prefix shown before amounts; defaults to the ISO code
	Location *time.Location
}

// DefaultFormatterConfig mirrors the Brazilian real display of the web client.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		Locale:   "pt-BR",
		Currency: "BRL",
		Symbol:   "R$",
		Location: time.UTC,
	}
}

// Formatter formats amounts and dates. It is immutable and safe for
// concurrent use.
type Formatter struct {
	printer  *message.Printer
	unit     currency.Unit
	symbol   string
	scale    int
	location *time.Location
}

// NewFormatter validates the configuration and builds a Formatter.
func NewFormatter(cfg FormatterConfig) (*Formatter, error) {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", cfg.Currency, err)
	}
	scale, _ := currency.Standard.Rounding(unit)

	symbol := strings.TrimSpace(cfg.Symbol)
	if symbol == "" {
		symbol = unit.String()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		unit:     unit,
		symbol:   symbol,
		scale:    scale,
		location: loc,
	}, nil
}

// MustFormatter is NewFormatter for configurations known to be valid.
func MustFormatter(cfg FormatterConfig) *Formatter {
	f, err := NewFormatter(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Currency formats an amount as localized currency text, e.g. "R$ 5.000,00".
// Negative amounts carry the sign before the symbol.
func (f *Formatter) Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	neg := v < 0
	if neg {
		v = -v
	}
	digits := f.printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(f.scale),
		number.MaxFractionDigits(f.scale),
	))
	s := f.symbol + " " + digits
	if neg {
		return "-" + s
	}
	return s
}

// Date formats t as dd/MM/yyyy in the formatter's location.
func (f *Formatter) Date(t time.Time) string {
	return t.In(f.location).Format(DateLayout)
}

// Location returns the zone used for timestamps without an offset.
func (f *Formatter) Location() *time.Location {
	return f.location
}

// CurrencyCode returns the ISO 4217 code in use.
func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}
