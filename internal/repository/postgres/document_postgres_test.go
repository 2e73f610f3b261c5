package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentCols = []string{
	"id", "project_id", "name", "original_filename", "content_type", "classification",
	"size", "storage_key", "url", "tags", "uploaded_by", "uploaded_at", "last_accessed",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		ID:               "doc-1",
		ProjectID:        "proj-1",
		Name:             "Q3 report",
		OriginalFilename: "report.pdf",
		ContentType:      "application/pdf",
		Classification:   model.ClassDocument,
		Size:             2 << 20,
		StorageKey:       "documents/acme/bridge/1-abc.pdf",
		Tags:             []string{"legal", "Q3"},
		UploadedBy:       "admin-1",
		UploadedAt:       now,
	}

	rows := sqlmock.NewRows(documentCols).
		AddRow(doc.ID, doc.ProjectID, doc.Name, doc.OriginalFilename, doc.ContentType, "document",
			doc.Size, doc.StorageKey, nil, `["legal","Q3"]`, doc.UploadedBy, doc.UploadedAt, nil)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.ProjectID, doc.Name, doc.OriginalFilename, doc.ContentType, "document",
			doc.Size, doc.StorageKey, nil, `["legal","Q3"]`, doc.UploadedBy, doc.UploadedAt, nil).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	require.NoError(t, err)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, []string{"legal", "Q3"}, result.Tags)
	assert.Equal(t, model.ClassDocument, result.Classification)
	assert.Nil(t, result.URL)
	assert.Nil(t, result.LastAccessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Create_Conflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "documents_storage_key_key"})

	_, err := repo.Create(context.Background(), &model.Document{ID: "doc-1"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		accessed := time.Now().UTC()
		rows := sqlmock.NewRows(documentCols).
			AddRow("doc-1", "proj-1", "Logo", "logo.png", "image/png", "image",
				100, "project-documents/x.png", "http://localhost/uploads/project-documents/x.png",
				`[]`, "admin-1", time.Now(), accessed)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		require.NotNil(t, doc.URL)
		assert.Equal(t, "http://localhost/uploads/project-documents/x.png", *doc.URL)
		require.NotNil(t, doc.LastAccessed)
		assert.Empty(t, doc.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_ListByProject(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)

	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	rows := sqlmock.NewRows(documentCols).
		AddRow("doc-2", "proj-1", "B", "b.pdf", "application/pdf", "document", 1, "k2", nil, `["x"]`, "u", newer, nil).
		AddRow("doc-1", "proj-1", "A", "a.pdf", "application/pdf", "document", 1, "k1", nil, `[]`, "u", older, nil)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE project_id = (.+) ORDER BY uploaded_at DESC").
		WithArgs("proj-1").
		WillReturnRows(rows)

	docs, err := repo.ListByProject(context.Background(), "proj-1")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[0].ID)
	assert.Equal(t, []string{"x"}, docs[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListByProject_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE project_id").
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(documentCols))

	docs, err := repo.ListByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestDocumentPostgres_TouchAccess(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE documents SET last_accessed").
		WithArgs("doc-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.TouchAccess(context.Background(), "doc-1", at))

	mock.ExpectExec("UPDATE documents SET last_accessed").
		WithArgs("gone", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.TouchAccess(context.Background(), "gone", at), repository.ErrNotFound)
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "doc-1"))

	// deleting a missing row is not an error
	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Delete(ctx, "doc-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_DeleteByProject(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)

	mock.ExpectExec("DELETE FROM documents WHERE project_id = ?").
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec("DELETE FROM documents WHERE project_id = ?").
		WithArgs("proj-2").
		WillReturnError(errors.New("connection refused"))
	_, err = repo.DeleteByProject(context.Background(), "proj-2")
	assert.Error(t, err)
}
