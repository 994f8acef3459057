package documents

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tavi/tavi/internal/domain/patient"
)

const displayDate = "02/01/2006"

// italianDate turns an ISO date into dd/mm/yyyy. Anything else is returned
// as given.
func italianDate(iso string) string {
	t, err := time.Parse(patient.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDate)
}

// capitalizeFirst upper-cases the first letter and leaves the rest alone.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return cases.Upper(language.Italian).String(string(r)) + s[size:]
}

// titleCase capitalises every whitespace-separated word and lower-cases the
// remaining letters. Runs of whitespace collapse to one space.
func titleCase(s string) string {
	upper := cases.Upper(language.Italian)
	lower := cases.Lower(language.Italian)
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(string(r)) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// decimal formats a measure in its shortest form, "" when absent.
func decimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ifSet returns label when value has visible content.
func ifSet(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label
}

var unsafeFilename = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// sanitizeFilename replaces characters that are not allowed in file names.
func sanitizeFilename(name string) string {
	return unsafeFilename.Replace(name)
}
