package catalog

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatCents renders an amount of centavos as a Brazilian Real string,
// e.g. 1500 -> "R$ 15,00" and 150000 -> "R$ 1.500,00". Reais and centavos
// are formatted as integers, so the result is exact for any int64 amount.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	reais := brl.Sprintf("%v", number.Decimal(cents/100))
	if neg {
		reais = "-" + reais
	}
	return fmt.Sprintf("R$ %s,%02d", reais, cents%100)
}
