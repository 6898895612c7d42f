package currency

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts as localized currency strings.
type Formatter struct {
	unit       currency.Unit
	scale      int
	printer    *message.Printer
	groupSep   string
	decimalSep string
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	printer := message.NewPrinter(tag)

	return &Formatter{
		unit:       unit,
		scale:      scale,
		printer:    printer,
		groupSep:   middle(printer.Sprint(number.Decimal(1000)), 1, 3),
		decimalSep: middle(printer.Sprint(number.Decimal(1.5, number.Scale(1))), 1, 1),
	}, nil
}

// Format rounds to the currency's standard scale and prefixes the symbol.
// The amount never leaves decimal form; only the integer part goes through
// the locale's number formatting.
func (f *Formatter) Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(int32(f.scale))

	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	intPart, fraction, _ := strings.Cut(fixed, ".")

	digits := f.groupInteger(intPart)
	if fraction != "" {
		digits += f.decimalSep + fraction
	}
	return f.printer.Sprintf("%v %s%s", currency.Symbol(f.unit), sign, digits)
}

// groupInteger formats an unsigned digit string with the locale's grouping.
// Values beyond int64 are grouped by thousands with the locale separator.
func (f *Formatter) groupInteger(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return f.printer.Sprint(number.Decimal(n))
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(f.groupSep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// middle drops head runes from the front and tail runes from the back of s.
func middle(s string, head, tail int) string {
	for i := 0; i < head && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	for i := 0; i < tail && s != ""; i++ {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
