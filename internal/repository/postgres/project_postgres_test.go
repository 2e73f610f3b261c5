package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectCols = []string{"id", "company_id", "name", "slug", "description", "status", "document_ids", "created_at", "updated_at"}

func TestProjectPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)

	now := time.Now().UTC()
	companyID := "comp-1"
	p := &model.Project{
		ID: "proj-1", CompanyID: &companyID, Name: "Harbour Bridge", Slug: "harbour-bridge",
		Status: model.ProjectPlanning, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO projects").
		WithArgs("proj-1", "comp-1", "Harbour Bridge", "harbour-bridge", "", "planning", `[]`, now, now).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("proj-1", "comp-1", "Harbour Bridge", "harbour-bridge", "", "planning", `[]`, now, now))

	out, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, out.CompanyID)
	assert.Equal(t, "comp-1", *out.CompanyID)
	assert.Equal(t, model.ProjectPlanning, out.Status)
	assert.NotNil(t, out.DocumentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id = ?").
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("proj-1", nil, "Bridge", "bridge", "d", "active", `["doc-1","doc-2"]`, now, now))

	p, err := repo.FindByID(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Nil(t, p.CompanyID)
	assert.Equal(t, []string{"doc-1", "doc-2"}, p.DocumentIDs)

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id = ?").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM projects ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("proj-1", nil, "Bridge", "bridge", "", "active", `[]`, now, now))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestProjectPostgres_ListByCompany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE company_id = ?").
		WithArgs("comp-1").
		WillReturnRows(sqlmock.NewRows(projectCols))

	items, err := repo.ListByCompany(context.Background(), "comp-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProjectPostgres_SlugExists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("bridge", "proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.SlugExists(context.Background(), "bridge", "proj-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProjectPostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)
	now := time.Now()
	p := &model.Project{ID: "proj-1", Name: "New", Slug: "new", Status: model.ProjectActive, UpdatedAt: now}

	mock.ExpectExec("UPDATE projects SET company_id").
		WithArgs("proj-1", nil, "New", "new", "", "active", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Update(context.Background(), p))

	mock.ExpectExec("UPDATE projects SET company_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), p), repository.ErrNotFound)
}

func TestProjectPostgres_AttachDetach(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE projects SET document_ids = CASE").
		WithArgs("proj-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.AttachDocument(ctx, "proj-1", "doc-1"))

	mock.ExpectExec("UPDATE projects SET document_ids = document_ids -").
		WithArgs("proj-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.DetachDocument(ctx, "proj-1", "doc-1"))

	mock.ExpectExec("UPDATE projects SET document_ids = CASE").
		WithArgs("gone", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.AttachDocument(ctx, "gone", "doc-1"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectPostgres(db)

	mock.ExpectExec("DELETE FROM projects WHERE id = ?").
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), "proj-1"))
}
