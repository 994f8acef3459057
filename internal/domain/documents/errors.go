package documents

import (
	"errors"
	"fmt"

	"github.com/tavi/tavi/internal/domain/patient"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrPatientNotFound  = fmt.Errorf("document subject: %w", patient.ErrNotFound)
	ErrEmptyContent     = errors.New("rendered document has no visible content")
	ErrOutputWrite      = errors.New("cannot write output document")
	ErrUnknownKind      = errors.New("unknown document kind")
)
