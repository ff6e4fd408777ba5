package draft

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Coercion of raw form input into payload field types. Each function is
// pure and total: absent or unparsable input yields the zero default,
// never an error. Presence requirements are enforced by the builder and
// the assembler, not here.

// Price coerces a price string to a decimal, defaulting to 0.
func Price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Quantity coerces a whole-number string to an int, defaulting to 0.
func Quantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ForeignKey coerces an id selection string to an integer foreign key.
// Empty, non-numeric, and non-positive input all become nil (no
// reference), never an error.
func ForeignKey(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
