package orders

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify derives a product slug from its name: words split on single
// spaces, joined by hyphens, lowercased. "Dark Chocolate" -> "dark-chocolate".
func Slugify(name string) string {
	// Casers carry state; one per call.
	return cases.Lower(language.Und).String(strings.Join(strings.Split(name, " "), "-"))
}
