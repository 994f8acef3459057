package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("patient not found")
	ErrInvalidStatus = errors.New("invalid patient status")
)

type Repository interface {
	// Create inserts the patient and places it in StatusToEvaluate.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*WithStatus, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithStatus, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, s Status) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
