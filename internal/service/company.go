package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/slug"
)

// CompanyService defines the use cases for companies.
type CompanyService interface {
	Create(ctx context.Context, in model.NewCompany) (*model.Company, error)
	Get(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context, limit, offset int) (*ListResult[model.Company], error)
	Update(ctx context.Context, id string, patch model.CompanyPatch) (*model.Company, error)

	// Delete refuses with ErrCompanyHasProjects while any project references the company.
	Delete(ctx context.Context, id string) error
}

type companyService struct {
	companies repository.CompanyRepository
	projects  repository.ProjectRepository
	options
}

// NewCompanyService constructs a new CompanyService.
func NewCompanyService(companies repository.CompanyRepository, projects repository.ProjectRepository, opts ...Option) CompanyService {
	return &companyService{companies: companies, projects: projects, options: newOptions(opts)}
}

func (s *companyService) Create(ctx context.Context, in model.NewCompany) (*model.Company, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	sl, err := slug.Unique(ctx, slug.Make(in.Name), func(ctx context.Context, candidate string) (bool, error) {
		return s.companies.SlugExists(ctx, candidate, "")
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	c := &model.Company{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        sl,
		Description: in.Description,
		Website:     in.Website,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	out, err := s.companies.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugConflict
		}
		return nil, err
	}
	return out, nil
}

func (s *companyService) Get(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *companyService) List(ctx context.Context, limit, offset int) (*ListResult[model.Company], error) {
	limit, offset = normalizePage(limit, offset)
	res, err := s.companies.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Company]{Items: res.Items, Total: res.Total}, nil
}

func (s *companyService) Update(ctx context.Context, id string, patch model.CompanyPatch) (*model.Company, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Apply(c) {
		sl, err := slug.Unique(ctx, slug.Make(c.Name), func(ctx context.Context, candidate string) (bool, error) {
			return s.companies.SlugExists(ctx, candidate, c.ID)
		})
		if err != nil {
			return nil, err
		}
		c.Slug = sl
	}
	c.UpdatedAt = s.now()

	if err := s.companies.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCompanyNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrSlugConflict
		}
		return nil, err
	}
	return c, nil
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	projects, err := s.projects.ListByCompany(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(projects) > 0 {
		return fmt.Errorf("%w: %d project(s) reference %s", ErrCompanyHasProjects, len(projects), c.Slug)
	}
	if err := s.companies.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.log.Info("company_deleted", zap.String("company_id", c.ID))
	return nil
}
