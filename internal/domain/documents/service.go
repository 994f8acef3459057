// Package documents fills the clinical document templates for a patient:
// the outpatient visit report, the procedural form, the informed consent
// (as a file or an HTML preview) and the blood-test request form.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tavi/tavi/internal/domain/patient"
	"github.com/tavi/tavi/internal/platform/docx"
	"github.com/tavi/tavi/internal/platform/janitor"
	"github.com/tavi/tavi/internal/platform/templates"
)

// Template file names.
const (
	AmbulatoryTemplate = "template_amb_strutturale.docx"
	ProceduralTemplate = "template_scheda_procedurale.docx"
	ConsentTemplate    = "consenso_informato_TAVI.docx"
	BloodTestsTemplate = "ee_tavi.pdf"
)

// Name prefixes of the ephemeral forms.
const (
	consentPrefix    = "Consenso informato - "
	bloodTestsPrefix = "Esami ematochimici - "
)

// EphemeralPrefixes are the file name prefixes of the forms written to the
// forms directory. A janitor sweeping that directory should be limited to them.
var EphemeralPrefixes = []string{consentPrefix, bloodTestsPrefix}

// Kind names a generated document.
type Kind string

const (
	KindAmbulatory Kind = "ambulatory"
	KindProcedural Kind = "procedural"
	KindConsent    Kind = "consent"
	KindBloodTests Kind = "blood-tests"
)

// Kinds lists every document kind Generate accepts.
var Kinds = []Kind{KindAmbulatory, KindProcedural, KindConsent, KindBloodTests}

// PatientSource looks up the patient a document is generated for.
type PatientSource interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.WithStatus, error)
}

// Dirs are the output directories. Forms holds ephemeral copies that the
// janitor removes.
type Dirs struct {
	Ambulatory string
	Procedural string
	Forms      string
}

type Service struct {
	patients  PatientSource
	templates *templates.Resolver
	out       afero.Fs
	dirs      Dirs
	janitor   *janitor.Janitor
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(patients PatientSource, resolver *templates.Resolver, out afero.Fs, dirs Dirs,
	jan *janitor.Janitor, logger zerolog.Logger) *Service {
	return &Service{
		patients:  patients,
		templates: resolver,
		out:       out,
		dirs:      dirs,
		janitor:   jan,
		logger:    logger.With().Str("component", "documents").Logger(),
		now:       time.Now,
	}
}

// Generate produces the document of the given kind and returns its path.
func (s *Service) Generate(ctx context.Context, kind Kind, patientID uuid.UUID) (string, error) {
	switch kind {
	case KindAmbulatory:
		return s.GenerateAmbulatoryReport(ctx, patientID)
	case KindProcedural:
		return s.GenerateProceduralReport(ctx, patientID)
	case KindConsent:
		return s.GenerateConsentForm(ctx, patientID)
	case KindBloodTests:
		return s.GenerateBloodTestsForm(ctx, patientID)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// GenerateAmbulatoryReport writes "<cognome> <nome>.docx" to the
// ambulatory reports directory.
func (s *Service) GenerateAmbulatoryReport(ctx context.Context, patientID uuid.UUID) (string, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return "", err
	}
	values := AmbulatoryValues(p, s.now())
	data, err := s.fill(AmbulatoryTemplate, func(_, xml string) string {
		return docx.Substitute(xml, values)
	})
	if err != nil {
		return "", err
	}
	return s.write(KindAmbulatory, p, s.dirs.Ambulatory, fmt.Sprintf("%s %s.docx", p.LastName, p.FirstName), data)
}

// GenerateProceduralReport writes the procedural form, with its checkboxes
// set, to the procedural reports directory.
func (s *Service) GenerateProceduralReport(ctx context.Context, patientID uuid.UUID) (string, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return "", err
	}
	values := ProceduralValues(p)
	flags := ProceduralFlags(p)
	data, err := s.fill(ProceduralTemplate, func(_, xml string) string {
		return docx.ApplyFlags(docx.Substitute(xml, values), flags)
	})
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("Scheda procedurale - %s %s.docx", p.LastName, p.FirstName)
	return s.write(KindProcedural, p, s.dirs.Procedural, name, data)
}

// GenerateConsentForm writes a filled consent form to the forms directory
// and schedules its removal.
func (s *Service) GenerateConsentForm(ctx context.Context, patientID uuid.UUID) (string, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return "", err
	}
	values := consentValues(p)
	data, err := s.fill(ConsentTemplate, func(_, xml string) string {
		return docx.Substitute(xml, values)
	})
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%s %s.docx", consentPrefix, p.LastName, p.FirstName)
	path, err := s.write(KindConsent, p, s.dirs.Forms, name, data)
	if err != nil {
		return "", err
	}
	s.janitor.Schedule(path)
	return path, nil
}

// PreviewConsentForm renders the filled consent form as HTML.
func (s *Service) PreviewConsentForm(ctx context.Context, patientID uuid.UUID) (string, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return "", err
	}
	_, content, err := s.templates.Load(ConsentTemplate, templates.KindDOCX)
	if err != nil {
		return "", templateError(err)
	}
	parts, err := docx.ReadParts(content, docx.DocumentPart, docx.StylesPart)
	if err != nil {
		return "", err
	}
	body, ok := parts[docx.DocumentPart]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", docx.ErrTemplateUnreadable, docx.DocumentPart)
	}

	var styles docx.StyleTable
	if xml, ok := parts[docx.StylesPart]; ok {
		styles = docx.ParseStyles(xml)
	}
	html := docx.Render(docx.Substitute(body, consentValues(p)), styles)
	if strings.TrimSpace(html) == "" {
		return "", ErrEmptyContent
	}
	return html, nil
}

// GenerateBloodTestsForm copies the blood-test request PDF to the forms
// directory and schedules its removal.
func (s *Service) GenerateBloodTestsForm(ctx context.Context, patientID uuid.UUID) (string, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return "", err
	}
	_, content, err := s.templates.Load(BloodTestsTemplate, templates.KindPDF)
	if err != nil {
		return "", templateError(err)
	}
	if err := checkPDF(content); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%s %s.pdf", bloodTestsPrefix, p.LastName, p.FirstName)
	path, err := s.write(KindBloodTests, p, s.dirs.Forms, name, content)
	if err != nil {
		return "", err
	}
	s.janitor.Schedule(path)
	return path, nil
}

func consentValues(p *patient.Patient) map[string]string {
	return map[string]string{"nome": p.FirstName, "cognome": p.LastName}
}

func (s *Service) patient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	ws, err := s.patients.GetPatient(ctx, id)
	if errors.Is(err, patient.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return ws.Patient, nil
}

// fill loads a DOCX template and rewrites every XML part with fn.
func (s *Service) fill(name string, fn docx.PartFunc) ([]byte, error) {
	_, content, err := s.templates.Load(name, templates.KindDOCX)
	if err != nil {
		return nil, templateError(err)
	}
	return docx.Transform(content, fn)
}

// write stores data as dir/name, with name sanitised, and returns the
// absolute path.
func (s *Service) write(kind Kind, p *patient.Patient, dir, name string, data []byte) (string, error) {
	if err := s.out.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrOutputWrite, dir, err)
	}
	path := filepath.Join(dir, sanitizeFilename(name))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := afero.WriteFile(s.out, path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	s.logger.Info().
		Str("kind", string(kind)).
		Str("patient_id", p.ID.String()).
		Str("path", path).
		Msg("document generated")
	return path, nil
}

// templateError classifies a resolver failure. A template that exists but
// cannot be read, or has the wrong format, is unreadable.
func templateError(err error) error {
	if errors.Is(err, templates.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	return fmt.Errorf("%w: %v", docx.ErrTemplateUnreadable, err)
}

// checkPDF verifies that content parses as a PDF with at least one page.
func checkPDF(content []byte) (err error) {
	defer func() {
		// the parser panics on some malformed cross-reference tables
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", docx.ErrTemplateUnreadable, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("%w: %v", docx.ErrTemplateUnreadable, err)
	}
	if r.NumPage() == 0 {
		return fmt.Errorf("%w: pdf has no pages", docx.ErrTemplateUnreadable)
	}
	return nil
}
