package docx

import (
	"regexp"
	"strings"
)

var (
	checkBoxRe = regexp.MustCompile(`<w:checkBox>.*?</w:checkBox>`)
	defaultRe  = regexp.MustCompile(`<w:default(?:\s+w:val="(?:[01]|true|false)")?\s*/>`)
	checkedRe  = regexp.MustCompile(`<w:checked(?:\s+w:val="(?:[01]|true|false)")?\s*/>`)
)

const (
	checkBoxOpen = "<w:checkBox>"
	defaultOn    = `<w:default w:val="1"/>`
	defaultOff   = `<w:default w:val="0"/>`
	checkedOn    = `<w:checked w:val="1"/>`
	checkedOff   = `<w:checked w:val="0"/>`
)

// ApplyFlags sets the state of the legacy checkbox form fields in xml.
// The i-th <w:checkBox> in document order takes flags[i]; fields past the end
// of flags are left alone.
//
// Checking a field writes w:default and w:checked, inserting whichever is
// missing. Unchecking only rewrites the elements that are already there.
func ApplyFlags(xml string, flags []bool) string {
	idx := 0
	return checkBoxRe.ReplaceAllStringFunc(xml, func(frag string) string {
		defer func() { idx++ }()
		if idx >= len(flags) {
			return frag
		}
		if flags[idx] {
			return check(frag)
		}
		return uncheck(frag)
	})
}

func check(frag string) string {
	frag = defaultRe.ReplaceAllLiteralString(frag, defaultOn)
	if !strings.Contains(frag, "w:default") {
		frag = strings.Replace(frag, checkBoxOpen, checkBoxOpen+defaultOn, 1)
	}
	if checkedRe.MatchString(frag) {
		return checkedRe.ReplaceAllLiteralString(frag, checkedOn)
	}
	return strings.Replace(frag, defaultOn, defaultOn+checkedOn, 1)
}

func uncheck(frag string) string {
	frag = defaultRe.ReplaceAllLiteralString(frag, defaultOff)
	return checkedRe.ReplaceAllLiteralString(frag, checkedOff)
}
