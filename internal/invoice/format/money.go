package format

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is prepended to every formatted amount.
const CurrencyPrefix = "Rp"

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders a whole-Rupiah amount grouped by thousands with the
// Indonesian separator, e.g. 1000000 -> "Rp1.000.000". There is never a
// fractional part.
func FormatRupiah(amount int64) string {
	return CurrencyPrefix + idPrinter.Sprintf("%d", amount)
}

// FormatQuantity renders a quantity as a plain, ungrouped integer.
func FormatQuantity(qty int64) string {
	return strconv.FormatInt(qty, 10)
}
