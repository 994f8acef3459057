package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/tavi/tavi/internal/domain/patient"
	"github.com/tavi/tavi/internal/platform/docx"
	"github.com/tavi/tavi/internal/platform/janitor"
	"github.com/tavi/tavi/internal/platform/templates"
)

const (
	templatesRoot = "/srv/tavi"
	bundledDir    = templatesRoot + "/src/lib/templates"
	ambDir        = "/data/referti"
	procDir       = "/data/referti/Schede procedurali"
	formsDir      = "/tmp/tavi_moduli"
)

var fixedNow = time.Date(2024, 9, 16, 10, 30, 0, 0, time.UTC)

type fakePatients map[uuid.UUID]*patient.Patient

func (f fakePatients) GetPatient(_ context.Context, id uuid.UUID) (*patient.WithStatus, error) {
	p, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}
	return &patient.WithStatus{Patient: p, Status: patient.StatusToEvaluate.Label()}, nil
}

func (f fakePatients) add(p *patient.Patient) uuid.UUID {
	p.ID = uuid.New()
	f[p.ID] = p
	return p.ID
}

type fixture struct {
	fs       afero.Fs
	patients fakePatients
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	patients := fakePatients{}
	jan := janitor.New(fs, formsDir, time.Hour, zerolog.Nop(), EphemeralPrefixes...)
	svc := NewService(patients, templates.NewResolver(fs, templatesRoot), fs,
		Dirs{Ambulatory: ambDir, Procedural: procDir, Forms: formsDir}, jan, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return &fixture{fs: fs, patients: patients, svc: svc}
}

func (f *fixture) template(t *testing.T, name string, content []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, bundledDir+"/"+name, content, 0o644))
}

// documentTemplate installs a DOCX whose body is the given paragraphs.
func (f *fixture) documentTemplate(t *testing.T, name, body string, styles string) {
	t.Helper()
	f.template(t, name, buildDocx(t, body, styles))
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func buildDocx(t *testing.T, body, styles string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	add := func(name string, method uint16, content string) {
		f, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	add("[Content_Types].xml", zip.Deflate, `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`)
	add(docx.DocumentPart, zip.Deflate, wrapBody(body))
	if styles != "" {
		add(docx.StylesPart, zip.Deflate, styles)
	}
	add("word/media/logo.png", zip.Store, "\x89PNG\r\n\x1a\n")
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, fs afero.Fs, path, part string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found in %s", part, path)
	return ""
}

func paragraph(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// checkbox is a native form checkbox; a ticked one carries both the default
// and the checked state.
func checkbox(checked bool) string {
	state := `<w:default w:val="0"/>`
	if checked {
		state = `<w:default w:val="1"/><w:checked w:val="1"/>`
	}
	return `<w:p><w:r><w:fldChar w:fldCharType="begin"><w:ffData><w:checkBox><w:sizeAuto/>` +
		state + `</w:checkBox></w:ffData></w:fldChar></w:r></w:p>`
}

func ptr(v float64) *float64 { return &v }

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, o := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}
