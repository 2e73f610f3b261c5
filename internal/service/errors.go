package service

import (
	"errors"

	"portal/internal/filetype"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrReaderNil  = errors.New("reader is nil")

	ErrUnsupportedMediaType = filetype.ErrUnsupportedMediaType
	ErrPayloadTooLarge      = filetype.ErrPayloadTooLarge

	ErrProjectNotFound  = errors.New("project not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrCompanyNotFound  = errors.New("company not found")

	// ErrStorageWrite means the bytes were not persisted; no record exists.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrRecordPersist means a database write failed after the bytes were stored.
	ErrRecordPersist = errors.New("record persist failed")

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPatch       = errors.New("invalid patch")
	ErrSlugConflict       = errors.New("slug already in use")
	ErrCompanyHasProjects = errors.New("company still has projects")
)
