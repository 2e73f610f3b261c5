package handler

import (
	"github.com/gofiber/fiber/v2"

	"portal/internal/model"
	"portal/internal/service"
)

// ListCompanies returns a page of companies.
//
// @Summary  List companies
// @Tags     companies
// @Produce  json
// @Param    limit  query int false "page size (max 100)"
// @Param    offset query int false "offset"
// @Success  200 {object} service.ListResult[model.Company]
// @Router   /api/companies [get]
func ListCompanies(svc service.CompanyService) fiber.Handler {
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

// GetCompany returns one company.
//
// @Summary  Get company
// @Tags     companies
// @Produce  json
// @Param    id path string true "company id"
// @Success  200 {object} model.Company
// @Failure  404 {object} errorPayload
// @Router   /api/companies/{id} [get]
func GetCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		co, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(co)
	}
}

// CreateCompany creates a company; the slug is derived from its name.
//
// @Summary  Create company
// @Tags     companies
// @Accept   json
// @Produce  json
// @Param    body body model.NewCompany true "company"
// @Success  201 {object} model.Company
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /api/companies [post]
func CreateCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.NewCompany
		if ok, err := decodeBody(c, &in); !ok {
			return err
		}
		co, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(co)
	}
}

// UpdateCompany applies a partial update. Unknown fields are rejected.
//
// @Summary  Update company
// @Tags     companies
// @Accept   json
// @Produce  json
// @Param    id   path string             true "company id"
// @Param    body body model.CompanyPatch true "fields to change"
// @Success  200 {object} model.Company
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /api/companies/{id} [patch]
func UpdateCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var patch model.CompanyPatch
		if ok, err := decodeBody(c, &patch); !ok {
			return err
		}
		co, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(co)
	}
}

// DeleteCompany removes a company that no project references.
//
// @Summary  Delete company
// @Tags     companies
// @Param    id path string true "company id"
// @Success  204
// @Failure  409 {object} errorPayload
// @Security BearerAuth
// @Router   /api/companies/{id} [delete]
func DeleteCompany(svc service.CompanyService) fiber.Handler {
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
