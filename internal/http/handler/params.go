package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portal/internal/model"
)

// idParam returns the named path parameter when it is a UUID.
func idParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

type page struct {
	limit  int
	offset int
}

// pageParams reads limit and offset; the service clamps the values. On bad input it
// writes the 400 response and reports false.
func pageParams(c *fiber.Ctx) (page, bool, error) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return page{}, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return page{}, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return page{limit: limit, offset: offset}, true, nil
}

// decodeBody strictly decodes the JSON body into v. It writes the 400 response
// itself and reports whether the handler should continue.
func decodeBody(c *fiber.Ctx, v any) (bool, error) {
	if err := model.DecodeStrict(c.Body(), v); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return false, writeError(c, fiber.StatusBadRequest, "UNKNOWN_FIELD", err.Error())
		}
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
	}
	return true, nil
}
