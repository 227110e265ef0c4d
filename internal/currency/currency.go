// Package currency converts between Toman, the storefront's unit, and Rial,
// the unit ZarinPal expects on the wire.
package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RialsPerToman is the fixed ratio between the two units.
const RialsPerToman = 10

// ErrInvalidAmount is returned for non-positive, fractional or overflowing amounts.
var ErrInvalidAmount = errors.New("invalid amount")

var rialsPerToman = decimal.NewFromInt(RialsPerToman)

// TomanToRial converts a positive Toman amount to Rial.
func TomanToRial(toman int64) (int64, error) {
	if toman <= 0 {
		return 0, fmt.Errorf("%w: must be greater than 0", ErrInvalidAmount)
	}
	if toman > math.MaxInt64/RialsPerToman {
		return 0, fmt.Errorf("%w: %d toman overflows rial", ErrInvalidAmount, toman)
	}
	return toman * RialsPerToman, nil
}

// RialToToman converts Rial to whole Toman, truncating any remainder.
func RialToToman(rial int64) int64 {
	return rial / RialsPerToman
}

// ParseTomanToRial parses a client-supplied Toman amount such as "250000" or
// "1250.5" and returns it in Rial. The result must be a positive whole Rial.
func ParseTomanToRial(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	toman, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	rial := toman.Mul(rialsPerToman)
	if !rial.IsInteger() {
		return 0, fmt.Errorf("%w: %s toman is not a whole rial amount", ErrInvalidAmount, s)
	}
	if rial.Sign() <= 0 {
		return 0, fmt.Errorf("%w: must be greater than 0", ErrInvalidAmount)
	}
	if rial.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: %s toman overflows rial", ErrInvalidAmount, s)
	}

	return rial.IntPart(), nil
}

// FormatToman renders a Toman amount with Persian digits and grouping, e.g. "۹۶۷٬۰۰۰ تومان".
func FormatToman(toman int64) string {
	return formatIn(language.Persian, toman) + " تومان"
}

// FormatTomanEn renders a Toman amount with English grouping, e.g. "967,000 Toman".
func FormatTomanEn(toman int64) string {
	return formatIn(language.English, toman) + " Toman"
}

func formatIn(tag language.Tag, amount int64) string {
	if amount < 0 {
		amount = 0
	}
	return message.NewPrinter(tag).Sprint(number.Decimal(amount))
}
