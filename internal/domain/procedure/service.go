package procedure

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

func (s *Service) CreateProcedure(ctx context.Context, p *Procedure) error {
	if err := validation.Struct(s.validate, p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProcedure(ctx context.Context, p *Procedure) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", validation.ErrInvalid)
	}
	if err := validation.Struct(s.validate, p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeleteProcedure(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListProcedures(ctx context.Context, f Filters, limit, offset int) ([]*Procedure, int, error) {
	if err := checkFilters(f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Statistics aggregates every procedure matching f.
func (s *Service) Statistics(ctx context.Context, f Filters) (*Statistics, error) {
	if err := checkFilters(f); err != nil {
		return nil, err
	}
	procs, err := s.repo.All(ctx, f)
	if err != nil {
		return nil, err
	}
	return ComputeStatistics(procs), nil
}

func checkFilters(f Filters) error {
	switch ValveType(f.ValveType) {
	case "", "all", BalloonExpandable, SelfExpandable:
	default:
		return fmt.Errorf("%w: tipo_valvola %q", ErrInvalidFilter, f.ValveType)
	}
	if f.Period != "" && f.Period != "all" && f.PeriodDays() == 0 {
		return fmt.Errorf("%w: period %q", ErrInvalidFilter, f.Period)
	}
	return nil
}
