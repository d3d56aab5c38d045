package procedure

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("procedure not found")
	ErrIDExists = errors.New("a procedure with this id already exists")
)

type (
	// Filter restricts procedure listings; the zero value lists everything.
	Filter struct {
		Category      string
		PublishedOnly bool
	}

	Repository interface {
		CreateProcedure(ctx context.Context, p Procedure) (Procedure, error)
		// QueryProcedures returns matching procedures ordered by position,
		// most recently created first within a position.
		QueryProcedures(ctx context.Context, filter Filter) ([]Procedure, error)
		GetProcedureByID(ctx context.Context, id string) (Procedure, error)
		UpdateProcedure(ctx context.Context, p Procedure) (Procedure, error)
		DeleteProceduresByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewProcedure) (Procedure, error) {
	now := time.Now().UTC()
	p := Procedure{
		ID:          np.ID,
		Title:       np.Title,
		Description: np.Description,
		Category:    np.Category,
		Position:    np.Position,
		Published:   np.Published == nil || *np.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return svc.repo.CreateProcedure(ctx, p)
}

func (svc *Service) Query(ctx context.Context, filter Filter) ([]Procedure, error) {
	return svc.repo.QueryProcedures(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Procedure, error) {
	return svc.repo.GetProcedureByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateProcedure) (Procedure, error) {
	p, err := svc.repo.GetProcedureByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}

	if up.Title != "" {
		p.Title = up.Title
	}
	if up.Description != "" {
		p.Description = up.Description
	}
	if up.Category != "" {
		p.Category = up.Category
	}
	if up.Position != nil {
		p.Position = *up.Position
	}
	if up.Published != nil {
		p.Published = *up.Published
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProcedure(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteProceduresByID(ctx, ids...)
}
