package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClientErrorResponse is the 4xx body. Legacy clients read message; newer
// ones read error.
type ClientErrorResponse struct {
	Message   string         `json:"message"`
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ServerErrorResponse is the 5xx body.
type ServerErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler is a centralized error handler for Fiber
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("request_id").(string)

		var appErr *apperr.AppError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &appErr):
			log := logger.WithField("request_id", requestID).
				WithField("error_code", appErr.Code).
				WithError(appErr.Err)
			if appErr.Status >= 500 {
				log.Error("Internal error: %s", appErr.Message)
				return c.Status(appErr.Status).JSON(ServerErrorResponse{
					Error:     "Internal Server Error",
					Details:   appErr.Message,
					Code:      appErr.Code,
					RequestID: requestID,
				})
			}
			log.Warn("Client error: %s", appErr.Message)
			return c.Status(appErr.Status).JSON(ClientErrorResponse{
				Message:   appErr.Message,
				Error:     appErr.Message,
				Code:      appErr.Code,
				Details:   appErr.Details,
				RequestID: requestID,
			})

		case errors.As(err, &fiberErr):
			if fiberErr.Code >= 500 {
				return c.Status(fiberErr.Code).JSON(ServerErrorResponse{
					Error:     "Internal Server Error",
					Details:   fiberErr.Message,
					Code:      mapHTTPStatusToCode(fiberErr.Code),
					RequestID: requestID,
				})
			}
			return c.Status(fiberErr.Code).JSON(ClientErrorResponse{
				Message:   fiberErr.Message,
				Error:     fiberErr.Message,
				Code:      mapHTTPStatusToCode(fiberErr.Code),
				RequestID: requestID,
			})

		default:
			logger.WithField("request_id", requestID).
				WithError(err).
				WithField("stack", string(debug.Stack())).
				Error("Unexpected error: %s", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(ServerErrorResponse{
				Error:     "Internal Server Error",
				Details:   diagnosticDetail(err),
				Code:      apperr.CodeInternalError,
				RequestID: requestID,
			})
		}
	}
}

const maxDetailLen = 120

// diagnosticDetail keeps the outermost operation label of an unexpected error.
// Driver and transport text below it stays in the logs.
func diagnosticDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	if len(msg) > maxDetailLen {
		msg = msg[:maxDetailLen]
	}
	if msg == "" {
		return "An unexpected error occurred"
	}
	return msg
}

// RequestID middleware adds a unique request ID to each request and to the
// request context used by services.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), requestID))
		return c.Next()
	}
}

// RequestLogger logs incoming requests and their responses
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Render now so the logged status is the one the client sees.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		requestID, _ := c.Locals("request_id").(string)
		status := c.Response().StatusCode()

		log := logger.WithFields(map[string]any{
			"request_id":  requestID,
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"ip":          c.IP(),
		})
		if uid, ok := c.Locals(LocalUserID).(int64); ok {
			log = log.WithField("user_id", uid)
		}

		switch {
		case status >= 500:
			log.Error("Request failed: %s %s -> %d", c.Method(), c.Path(), status)
		case status >= 400:
			log.Warn("Request error: %s %s -> %d", c.Method(), c.Path(), status)
		default:
			log.Info("Request completed: %s %s -> %d", c.Method(), c.Path(), status)
		}
		return nil
	}
}

// Recover middleware recovers from panics
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("request_id").(string)
				logger.WithFields(map[string]any{
					"request_id": requestID,
					"panic":      fmt.Sprintf("%v", r),
					"path":       c.Path(),
					"method":     c.Method(),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")

				err = c.Status(fiber.StatusInternalServerError).JSON(ServerErrorResponse{
					Error:     "Internal Server Error",
					Details:   "An unexpected error occurred",
					Code:      apperr.CodeInternalError,
					RequestID: requestID,
				})
			}
		}()
		return c.Next()
	}
}

func mapHTTPStatusToCode(status int) string {
	switch status {
	case 400:
		return apperr.CodeBadRequest
	case 401:
		return apperr.CodeUnauthorized
	case 403:
		return apperr.CodeForbidden
	case 404:
		return apperr.CodeNotFound
	case 405:
		return "METHOD_NOT_ALLOWED"
	case 409:
		return apperr.CodeConflict
	case 413:
		return "PAYLOAD_TOO_LARGE"
	case 429:
		return apperr.CodeRateLimited
	case 500:
		return apperr.CodeInternalError
	case 502, 503, 504:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
