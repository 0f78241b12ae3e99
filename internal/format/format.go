// Package format renders fiscal document structures into the display strings
// the external PDF renderer prints verbatim. All localisation lives here;
// domain structures stay numeric.
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hudemas/api/internal/domain"
)

var romanianMonths = [...]string{
	"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
	"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie",
}

// Formatter produces Romanian-locale display strings for amounts and dates.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter constructs a Formatter for the given display currency code.
func NewFormatter(currency string) *Formatter {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "RON"
	}
	return &Formatter{
		printer:  message.NewPrinter(language.Romanian),
		currency: code,
	}
}

// Amount renders an amount with Romanian digit grouping and two decimals,
// e.g. 1234.5 -> "1.234,50".
func (f *Formatter) Amount(v float64) string {
	return f.printer.Sprint(number.Decimal(domain.Round2(v),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// AmountWithCurrency renders an amount followed by the currency code,
// e.g. "1.234,50 RON".
func (f *Formatter) AmountWithCurrency(v float64) string {
	return f.Amount(v) + " " + f.currency
}

// LongDate renders a date in Romanian long form, e.g. "10 martie 2026".
// Plain fmt on purpose: the localised printer would group the year digits.
func (f *Formatter) LongDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d %s %d", t.Day(), romanianMonths[t.Month()-1], t.Year())
}

// ShortDate renders a date in the dd.mm.yyyy form used on invoice headers.
func (f *Formatter) ShortDate(t time.Time) string {
	return t.UTC().Format("02.01.2006")
}
