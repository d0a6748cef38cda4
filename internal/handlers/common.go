package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// currentUserID reads the identity attached by the auth middleware.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	uid, _ := c.Locals("userId").(string)
	return uuid.Parse(uid)
}

type UserMini struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
