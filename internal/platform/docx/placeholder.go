package docx

import (
	"regexp"
	"sort"
	"strings"
)

var (
	proofErrRe    = regexp.MustCompile(`<w:proofErr[^>]*/>`)
	anyTagRe      = regexp.MustCompile(`<[^>]+>`)
	placeholderRe = regexp.MustCompile(`\{([^}]*)\}`)
)

const lineBreak = "<w:br/>"

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Substitute replaces every {key} token in xml with the matching value.
//
// Word inserts spell-check markers and run boundaries in the middle of typed
// text, so before matching, proofErr elements are dropped and any markup found
// between a pair of braces is removed. Values are XML-escaped and newlines
// become <w:br/>. Tokens with no entry in values are left as they are.
//
// A few legacy templates carry the bare key as element text (">key<") instead
// of a braced token; those are replaced as well.
func Substitute(xml string, values map[string]string) string {
	out := proofErrRe.ReplaceAllString(xml, "")
	out = placeholderRe.ReplaceAllStringFunc(out, func(token string) string {
		inner := token[1 : len(token)-1]
		return "{" + anyTagRe.ReplaceAllString(inner, "") + "}"
	})

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := xmlValue(values[key])

		out = strings.ReplaceAll(out, "{"+key+"}", value)

		bare := ">" + key + "<"
		if strings.Contains(out, bare) {
			out = strings.ReplaceAll(out, bare, ">"+value+"<")
		}
	}
	return out
}

// xmlValue escapes v for use as element text and turns line endings into
// explicit Word line breaks.
func xmlValue(v string) string {
	escaped := xmlTextEscaper.Replace(v)
	escaped = strings.ReplaceAll(escaped, "\r\n", lineBreak)
	escaped = strings.ReplaceAll(escaped, "\n", lineBreak)
	return strings.ReplaceAll(escaped, "&lt;w:br/&gt;", lineBreak)
}
