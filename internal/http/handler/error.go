package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messagePayload is the body of successful deletes.
type messagePayload struct {
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the standard error envelope. message must be caller-safe.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// writeServiceError maps a façade error onto a status code. Ownership failures
// are 403 (the caller is authenticated, just not the owner); a duplicate email
// is reported as a 400 like any other bad input.
func writeServiceError(c *fiber.Ctx, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	switch se.Kind {
	case service.KindBadRequest:
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", se.Message)
	case service.KindConflict:
		return writeError(c, fiber.StatusBadRequest, "CONFLICT", se.Message)
	case service.KindUnauthorized:
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", se.Message)
	case service.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", se.Message)
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", se.Message)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", message)
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
