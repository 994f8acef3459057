package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		xml    string
		values map[string]string
		want   string
	}{
		{
			name:   "simple token",
			xml:    `<w:t>{nome}</w:t>`,
			values: map[string]string{"nome": "Mario"},
			want:   `<w:t>Mario</w:t>`,
		},
		{
			name:   "token split across runs",
			xml:    `<w:t>{</w:t></w:r><w:r><w:t>cognome}</w:t>`,
			values: map[string]string{"cognome": "Rossi"},
			want:   `<w:t>Rossi</w:t>`,
		},
		{
			name:   "proofErr inside token",
			xml:    `<w:t>{no<w:proofErr w:type="spellStart"/>me}</w:t>`,
			values: map[string]string{"nome": "Mario"},
			want:   `<w:t>Mario</w:t>`,
		},
		{
			name:   "value is escaped",
			xml:    `<w:t>{note}</w:t>`,
			values: map[string]string{"note": "a < b & c > d"},
			want:   `<w:t>a &lt; b &amp; c &gt; d</w:t>`,
		},
		{
			name:   "newlines become breaks",
			xml:    `<w:t>{note}</w:t>`,
			values: map[string]string{"note": "uno\ndue\r\ntre"},
			want:   `<w:t>uno<w:br/>due<w:br/>tre</w:t>`,
		},
		{
			name:   "literal break markup survives escaping",
			xml:    `<w:t>{note}</w:t>`,
			values: map[string]string{"note": "uno<w:br/>due"},
			want:   `<w:t>uno<w:br/>due</w:t>`,
		},
		{
			name:   "unknown token is kept",
			xml:    `<w:t>{sconosciuto}</w:t>`,
			values: map[string]string{"nome": "Mario"},
			want:   `<w:t>{sconosciuto}</w:t>`,
		},
		{
			name:   "bare legacy key",
			xml:    `<w:t>cf</w:t>`,
			values: map[string]string{"cf": "RSSMRA80A01H501U"},
			want:   `<w:t>RSSMRA80A01H501U</w:t>`,
		},
		{
			name:   "empty value",
			xml:    `<w:t>[{altro}]</w:t>`,
			values: map[string]string{"altro": ""},
			want:   `<w:t>[]</w:t>`,
		},
		{
			name:   "repeated token",
			xml:    `<w:t>{nome} {nome}</w:t>`,
			values: map[string]string{"nome": "Anna"},
			want:   `<w:t>Anna Anna</w:t>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.xml, tt.values))
		})
	}
}

func TestSubstitute_NoValuesLeavesTextAlone(t *testing.T) {
	xml := `<w:p><w:r><w:t>Nessun segnaposto</w:t></w:r></w:p>`
	assert.Equal(t, xml, Substitute(xml, nil))
}
