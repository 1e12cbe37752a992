package http

import (
	"errors"
	"fmt"
	"strings"

	"tracker_server/infra/middleware"
	"tracker_server/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindAndValidate decodes the JSON body into dst and runs its validate tags.
func bindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("Invalid request body").WithError(err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports the first failing field in a client-readable form.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.ValidationFailed("Invalid request").WithError(err)
	}

	fe := fieldErrs[0]
	field := fe.StructField()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters long.", field, fe.Param())
	case "email":
		msg = "Invalid email address"
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return apperr.ValidationFailed(msg).WithDetail("field", field)
}

// ownerEmail resolves whose data a request addresses. Anonymous callers name
// the account explicitly; an authenticated caller may only address itself.
func ownerEmail(c *fiber.Ctx, provided string) (string, error) {
	provided = strings.TrimSpace(provided)
	caller := middleware.CallerEmail(c)
	switch {
	case caller == "":
		return provided, nil
	case provided == "":
		return caller, nil
	case strings.EqualFold(provided, caller):
		return provided, nil
	default:
		return "", apperr.Forbidden("Email does not match the signed-in user")
	}
}

// withMiddleware returns a fresh handler chain ending in handler.
func withMiddleware(middlewares []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(middlewares)+1)
	chain = append(chain, middlewares...)
	return append(chain, handler)
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
