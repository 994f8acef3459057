package procedure

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("procedure not found")
	ErrInvalidFilter = errors.New("invalid procedure filter")
)

type Repository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error)
	Update(ctx context.Context, p *Procedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page, newest first, and the filtered total.
	List(ctx context.Context, f Filters, limit, offset int) ([]*Procedure, int, error)
	// All returns every procedure matching f, newest first.
	All(ctx context.Context, f Filters) ([]*Procedure, error)
	Count(ctx context.Context) (int, error)
}
