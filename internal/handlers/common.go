package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pasar/internal/apperrors"
)

// parseID parses a numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// errorResponse maps a data-layer error to an HTTP response. Validation
// errors become 400 (409 for duplicates), everything else 500.
func errorResponse(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError
	if apperrors.IsValidation(err) {
		status = fiber.StatusBadRequest
		if strings.Contains(err.Error(), "already exists") {
			status = fiber.StatusConflict
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func notFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": message,
	})
}

func badRequestResponse(c *fiber.Ctx, message string, err error) error {
	resp := fiber.Map{"message": message}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(c *fiber.Ctx, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// queryFloat reads an optional float query parameter.
func queryFloat(c *fiber.Ctx, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
