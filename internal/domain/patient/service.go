package patient

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tavi/tavi/internal/platform/validation"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validation.New()}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := validation.Struct(s.validate, p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*WithStatus, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", validation.ErrInvalid)
	}
	if err := validation.Struct(s.validate, p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, f Filters, limit, offset int) ([]*WithStatus, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// ListByStatus lists the patients in the status with the given label or code.
func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*WithStatus, int, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, Filters{Status: string(st)}, limit, offset)
}

// ChangeStatus moves a patient to the status with the given label or code.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) error {
	st, err := ParseStatus(status)
	if err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, id, st)
}

// StatusCounts returns one entry per status in workflow order, including
// empty ones.
func (s *Service) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StatusCount, 0, len(Statuses))
	for _, st := range Statuses {
		out = append(out, StatusCount{Status: st.Label(), Count: counts[st]})
	}
	return out, nil
}
