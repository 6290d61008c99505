package response

import (
	"github.com/gofiber/fiber/v2"
)

// Body is the standardized JSON envelope for both success and error responses.
type Body struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Detail     `json:"error,omitempty"`
}

// Detail is the nested error object.
type Detail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

// Success sends a 200 OK with the standard envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Body{Status: "success", Message: message, Data: data})
}

// Created sends a 201 Created with the standard envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Body{Status: "success", Message: message, Data: data})
}

// Error sends an error response with the standard envelope.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	return c.Status(statusCode).JSON(Body{
		Status: "error",
		Error:  &Detail{Message: message, StatusCode: statusCode, Details: details},
	})
}

// Unauthorized sends 401 in the standard envelope, for auth middleware.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// Forbidden sends 403 in the standard envelope.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}
