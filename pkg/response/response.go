package response

import (
	"errors"

	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/gofiber/fiber/v2"
)

// APIResponse is the JSON envelope every endpoint returns.
// Errors is only populated for partial successes, e.g. when an account was
// created but the notification email could not be delivered.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError reports a named secondary failure inside a successful response.
type FieldError struct {
	Name    string `json:"errorName"`
	Message string `json:"message"`
}

func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithErrors reports a committed primary operation together with
// non-fatal secondary failures.
func SuccessWithErrors(c *fiber.Ctx, data interface{}, secondary []FieldError) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Errors:  secondary,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromError maps a service error to its HTTP status using the apperr kind.
// Internal failures are masked with a generic message so causes never leak.
func FromError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return InternalError(c, "internal server error")
	}

	switch appErr.Kind {
	case apperr.KindBadRequest:
		return BadRequest(c, appErr.Message)
	case apperr.KindUnauthorized:
		return Unauthorized(c, appErr.Message)
	case apperr.KindForbidden:
		return Forbidden(c, appErr.Message)
	case apperr.KindNotFound:
		return NotFound(c, appErr.Message)
	case apperr.KindConflict:
		return Error(c, fiber.StatusConflict, appErr.Message)
	default:
		return InternalError(c, "internal server error")
	}
}
