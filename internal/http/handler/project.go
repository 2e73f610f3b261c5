package handler

import (
	"github.com/gofiber/fiber/v2"

	"portal/internal/model"
	"portal/internal/service"
)

// cascadeResponse is the body returned after a project deletion.
type cascadeResponse struct {
	ProjectID string                `json:"project_id"`
	Documents []service.CascadeItem `json:"documents"`
	Failed    int                   `json:"failed"`
	Swept     int64                 `json:"swept"`
}

// ListProjects returns a page of projects.
//
// @Summary  List projects
// @Tags     projects
// @Produce  json
// @Param    limit  query int false "page size (max 100)"
// @Param    offset query int false "offset"
// @Success  200 {object} service.ListResult[model.Project]
// @Router   /api/projects [get]
func ListProjects(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok, err := pageParams(c)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), p.limit, p.offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetProject returns one project with its document id set.
//
// @Summary  Get project
// @Tags     projects
// @Produce  json
// @Param    id path string true "project id"
// @Success  200 {object} model.Project
// @Failure  404 {object} errorPayload
// @Router   /api/projects/{id} [get]
func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// CreateProject creates a project, optionally owned by a company.
//
// @Summary  Create project
// @Tags     projects
// @Accept   json
// @Produce  json
// @Param    body body model.NewProject true "project"
// @Success  201 {object} model.Project
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/projects [post]
func CreateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.NewProject
		if ok, err := decodeBody(c, &in); !ok {
			return err
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdateProject applies a partial update. Only name, description, status and
// company_id may be sent.
//
// @Summary  Update project
// @Tags     projects
// @Accept   json
// @Produce  json
// @Param    id   path string             true "project id"
// @Param    body body model.ProjectPatch true "fields to change"
// @Success  200 {object} model.Project
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /api/projects/{id} [patch]
func UpdateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var patch model.ProjectPatch
		if ok, err := decodeBody(c, &patch); !ok {
			return err
		}
		p, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProject deletes the project and all of its documents and reports the
// outcome per document.
//
// @Summary  Delete project
// @Tags     projects
// @Produce  json
// @Param    id path string true "project id"
// @Success  200 {object} cascadeResponse
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/projects/{id} [delete]
func DeleteProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		report, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cascadeResponse{
			ProjectID: report.ProjectID,
			Documents: report.Items,
			Failed:    report.Failed(),
			Swept:     report.Swept,
		})
	}
}
