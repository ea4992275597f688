// Package inquiry builds the WhatsApp booking-inquiry links that are the
// site's conversion funnel: no checkout, just a prefilled conversation with
// the agency.
package inquiry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dhages/turismo-api/internal/catalog"
)

// NewReference returns a short reference code the back office can quote when
// the conversation arrives, e.g. "ref-3f2a9c1d".
func NewReference() string {
	return "ref-" + uuid.NewString()[:8]
}

// WhatsAppLink builds a wa.me deep link for the given phone number (digits
// only, country code included) with the message prefilled.
func WhatsAppLink(number, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}

// PackageMessage composes the inquiry text for one package: title, the next
// departure with its cash fare when known, the page URL, and a reference code.
func PackageMessage(pkg catalog.Package, pageURL, ref string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, tenho interesse no pacote %q (%s).", pkg.Title, pageURL)
	if len(pkg.Dates) > 0 {
		next := pkg.Dates[0]
		fmt.Fprintf(&b, " Próxima saída: %s, a partir de %s.",
			next.Departure.Format("02/01/2006"), catalog.FormatCents(next.Price))
	}
	fmt.Fprintf(&b, " Poderia me dar mais informações? [%s]", ref)
	return b.String()
}
