package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (m docMocks) companyService() CompanyService {
	return NewCompanyService(m.companies, m.projects, WithClock(func() time.Time { return fixedNow }))
}

func TestCompanyService_Create(t *testing.T) {
	m := newDocMocks()
	m.companies.On("SlugExists", mock.Anything, "societe-generale", "").Return(false, nil)
	m.companies.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Company) bool {
		return c.Slug == "societe-generale" && c.Name == "Société Générale"
	})).Return(&model.Company{ID: "C1", Slug: "societe-generale"}, nil)

	c, err := m.companyService().Create(context.Background(), model.NewCompany{Name: "Société Générale"})

	require.NoError(t, err)
	assert.Equal(t, "societe-generale", c.Slug)
	m.assert(t)

	_, err = newDocMocks().companyService().Create(context.Background(), model.NewCompany{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompanyService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rename regenerates slug", func(t *testing.T) {
		m := newDocMocks()
		m.companies.On("FindByID", mock.Anything, "C1").Return(&model.Company{ID: "C1", Name: "Acme", Slug: "acme"}, nil)
		m.companies.On("SlugExists", mock.Anything, "acme-holdings", "C1").Return(false, nil)
		m.companies.On("Update", mock.Anything, mock.Anything).Return(nil)

		c, err := m.companyService().Update(ctx, "C1", model.CompanyPatch{Name: strPtr("Acme Holdings")})

		require.NoError(t, err)
		assert.Equal(t, "acme-holdings", c.Slug)
		m.assert(t)
	})

	t.Run("website only", func(t *testing.T) {
		m := newDocMocks()
		m.companies.On("FindByID", mock.Anything, "C1").Return(&model.Company{ID: "C1", Name: "Acme", Slug: "acme"}, nil)
		m.companies.On("Update", mock.Anything, mock.Anything).Return(nil)

		c, err := m.companyService().Update(ctx, "C1", model.CompanyPatch{Website: strPtr("https://acme.test")})

		require.NoError(t, err)
		assert.Equal(t, "acme", c.Slug)
		assert.Equal(t, "https://acme.test", c.Website)
		m.assert(t)
	})

	t.Run("blank name", func(t *testing.T) {
		m := newDocMocks()
		_, err := m.companyService().Update(ctx, "C1", model.CompanyPatch{Name: strPtr("  ")})
		assert.ErrorIs(t, err, ErrInvalidPatch)
	})
}

func TestCompanyService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(m docMocks)
		wantErr    error
	}{
		{
			name: "no projects",
			setupMocks: func(m docMocks) {
				m.companies.On("FindByID", mock.Anything, "C1").Return(&model.Company{ID: "C1", Slug: "acme"}, nil)
				m.projects.On("ListByCompany", mock.Anything, "C1").Return([]model.Project{}, nil)
				m.companies.On("Delete", mock.Anything, "C1").Return(nil)
			},
		},
		{
			name: "refused while projects reference it",
			setupMocks: func(m docMocks) {
				m.companies.On("FindByID", mock.Anything, "C1").Return(&model.Company{ID: "C1", Slug: "acme"}, nil)
				m.projects.On("ListByCompany", mock.Anything, "C1").Return([]model.Project{{ID: "P1"}}, nil)
			},
			wantErr: ErrCompanyHasProjects,
		},
		{
			name: "lookup error",
			setupMocks: func(m docMocks) {
				m.companies.On("FindByID", mock.Anything, "C1").Return(&model.Company{ID: "C1"}, nil)
				m.projects.On("ListByCompany", mock.Anything, "C1").Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
		{
			name: "unknown company",
			setupMocks: func(m docMocks) {
				m.companies.On("FindByID", mock.Anything, "C1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrCompanyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDocMocks()
			tt.setupMocks(m)

			err := m.companyService().Delete(ctx, "C1")

			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, ErrCompanyHasProjects), errors.Is(tt.wantErr, ErrCompanyNotFound):
				assert.ErrorIs(t, err, tt.wantErr)
				m.companies.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			default:
				assert.EqualError(t, err, tt.wantErr.Error())
			}
			m.assert(t)
		})
	}
}
