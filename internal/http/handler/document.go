package handler

import (
	"github.com/gofiber/fiber/v2"

	"portal/internal/filetype"
	"portal/internal/http/middleware"
	"portal/internal/model"
	"portal/internal/service"
)

// ListProjectDocuments returns the documents of a project, newest first.
//
// @Summary  List project documents
// @Tags     documents
// @Produce  json
// @Param    id path string true "project id"
// @Success  200 {object} map[string][]model.Document
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/projects/{id}/documents [get]
func ListProjectDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		docs, err := svc.ListByProject(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": docs})
	}
}

// UploadDocument stores a file for a project (multipart/form-data, field "file";
// optional "name" and comma-separated "tags").
//
// @Summary  Upload document
// @Tags     documents
// @Accept   mpfd
// @Produce  json
// @Param    id   path     string true  "project id"
// @Param    file formData file   true  "document"
// @Param    name formData string false "display name"
// @Param    tags formData string false "comma-separated tags"
// @Success  201 {object} service.UploadResult
// @Failure  413 {object} errorPayload
// @Failure  415 {object} errorPayload
// @Security BearerAuth
// @Router   /api/projects/{id}/documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = filetype.Generic
		}

		in := service.UploadInput{
			ProjectID:   projectID,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Reader:      f,
			DisplayName: c.FormValue("name"),
			Tags:        model.ParseTags(c.FormValue("tags")),
		}
		if p, ok := middleware.PrincipalFrom(c); ok {
			in.UploaderID = p.Subject
		}

		res, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetDocument returns a document's metadata.
//
// @Summary  Get document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} model.Document
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ViewDocument issues a URL for reading the document. Remote storage URLs expire.
//
// @Summary  Document view URL
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} service.ViewResult
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id}/view [get]
func ViewDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		res, err := svc.ViewURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(res)
	}
}

// DeleteDocument removes the document, its project link and its stored bytes.
//
// @Summary  Delete document
// @Tags     documents
// @Param    id path string true "document id"
// @Success  204
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
