package docx

import (
	"regexp"
	"strconv"
	"strings"
)

// Style is the subset of a named style definition the preview honours.
type Style struct {
	Align     string
	Size      *float64 // points
	Bold      bool
	Italic    bool
	Underline bool
}

// StyleTable maps w:styleId to its definition.
type StyleTable map[string]Style

var (
	styleRe  = regexp.MustCompile(`(?s)<w:style\s[^>]*?w:styleId="([^"]+)"(?:[^>]*[^/>])?>(.*?)</w:style>`)
	paraRe   = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*[^/])?>(.*?)</w:p>`)
	runRe    = regexp.MustCompile(`(?s)<w:r(?:\s[^>]*[^/])?>(.*?)</w:r>`)
	pPrRe    = regexp.MustCompile(`(?s)<w:pPr(?:\s[^>]*)?>(.*?)</w:pPr>`)
	rPrRe    = regexp.MustCompile(`(?s)<w:rPr(?:\s[^>]*)?>(.*?)</w:rPr>`)
	pStyleRe = regexp.MustCompile(`<w:pStyle\s[^>]*?w:val="([^"]+)"`)
	jcRe     = regexp.MustCompile(`<w:jc\s[^>]*?w:val="([^"]+)"`)
	szRe     = regexp.MustCompile(`<w:sz\s[^>]*?w:val="(\d+)"`)
	boldRe   = regexp.MustCompile(`<w:b(?:\s[^>]*)?/?>`)
	italicRe = regexp.MustCompile(`<w:i(?:\s[^>]*)?/?>`)
	underRe  = regexp.MustCompile(`<w:u(?:\s[^>]*)?/?>`)
	valRe    = regexp.MustCompile(`w:val="([^"]*)"`)

	tabRe       = regexp.MustCompile(`<w:tab\s*/>`)
	breakRe     = regexp.MustCompile(`<w:(?:br|cr)(?:\s[^>]*)?/>`)
	instrTextRe = regexp.MustCompile(`(?s)<w:instrText(?:\s[^>]*)?>.*?</w:instrText>`)
)

var (
	entityDecoder = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", `"`, "&apos;", "'")
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// ParseStyles extracts alignment, size and bold/italic/underline for every
// style in a styles.xml part.
func ParseStyles(stylesXML string) StyleTable {
	styles := make(StyleTable)
	for _, m := range styleRe.FindAllStringSubmatch(stylesXML, -1) {
		body := m[2]
		pPr := firstGroup(pPrRe, body)
		rPr := firstGroup(rPrRe, body)

		st := Style{
			Align: firstGroup(jcRe, pPr),
			Size:  halfPoints(rPr),
		}
		st.Bold, st.Italic, st.Underline = toggles(rPr)
		styles[m[1]] = st
	}
	return styles
}

// Render converts the paragraphs of a document.xml part into HTML <p>
// elements, one per line. Paragraphs without visible text are dropped, so an
// empty template renders to "". styles may be nil.
func Render(documentXML string, styles StyleTable) string {
	var parts []string

	for _, m := range paraRe.FindAllStringSubmatch(documentXML, -1) {
		para := m[1]
		pPr := firstGroup(pPrRe, para)

		var style *Style
		if id := firstGroup(pStyleRe, pPr); id != "" {
			if st, ok := styles[id]; ok {
				style = &st
			}
		}

		align := firstGroup(jcRe, pPr)
		if align == "" && style != nil {
			align = style.Align
		}

		size := halfPoints(pPr)
		if size == nil && style != nil {
			size = style.Size
		}

		var body strings.Builder
		for _, r := range runRe.FindAllStringSubmatch(para, -1) {
			body.WriteString(renderRun(r[1]))
		}

		content := strings.TrimSpace(body.String())
		if content == "" {
			continue
		}

		var css []string
		if a := cssAlign(align); a != "left" {
			css = append(css, "text-align: "+a)
		}
		if size != nil {
			css = append(css, "font-size: "+formatPoints(*size))
		}
		if style != nil {
			css = appendToggles(css, style.Bold, style.Italic, style.Underline)
		}

		parts = append(parts, wrap("p", css, content))
	}

	return strings.Join(parts, "\n")
}

func renderRun(run string) string {
	rPr := firstGroup(rPrRe, run)
	bold, italic, underline := toggles(rPr)
	size := halfPoints(rPr)

	text := instrTextRe.ReplaceAllString(run, "")
	text = tabRe.ReplaceAllString(text, "\t")
	text = breakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")
	text = strings.TrimRight(entityDecoder.Replace(text), "\r")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	escaped := htmlEscaper.Replace(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br/>")
	escaped = strings.ReplaceAll(escaped, "\t", "&emsp;")

	css := appendToggles(nil, bold, italic, underline)
	if size != nil {
		css = append(css, "font-size: "+formatPoints(*size))
	}
	if len(css) == 0 {
		return escaped
	}
	return wrap("span", css, escaped)
}

func wrap(tag string, css []string, content string) string {
	if len(css) == 0 {
		return "<" + tag + ">" + content + "</" + tag + ">"
	}
	return "<" + tag + ` style="` + strings.Join(css, "; ") + `">` + content + "</" + tag + ">"
}

func appendToggles(css []string, bold, italic, underline bool) []string {
	if bold {
		css = append(css, "font-weight: 700")
	}
	if italic {
		css = append(css, "font-style: italic")
	}
	if underline {
		css = append(css, "text-decoration: underline")
	}
	return css
}

// toggles reports which of bold, italic and underline a run-properties block
// turns on. A bare <w:b/> is on; w:val="0" or "false" turns it off. Underline
// is off only for w:val="none".
func toggles(rPr string) (bold, italic, underline bool) {
	if rPr == "" {
		return false, false, false
	}
	bold = onOff(boldRe, rPr, "0", "false")
	italic = onOff(italicRe, rPr, "0", "false")
	underline = onOff(underRe, rPr, "none")
	return bold, italic, underline
}

func onOff(re *regexp.Regexp, props string, off ...string) bool {
	tag := re.FindString(props)
	if tag == "" {
		return false
	}
	val := firstGroup(valRe, tag)
	for _, o := range off {
		if val == o {
			return false
		}
	}
	return true
}

// halfPoints returns the first w:sz value in props converted to points.
func halfPoints(props string) *float64 {
	raw := firstGroup(szRe, props)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	pt := float64(v) / 2
	return &pt
}

func formatPoints(pt float64) string {
	return strconv.FormatFloat(pt, 'f', -1, 64) + "pt"
}

func cssAlign(jc string) string {
	switch jc {
	case "both":
		return "justify"
	case "center":
		return "center"
	case "right":
		return "right"
	default:
		return "left"
	}
}

func firstGroup(re *regexp.Regexp, s string) string {
	if s == "" {
		return ""
	}
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
