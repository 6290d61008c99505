package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"swapdesk-backend/internal/pkg/apperrors"
	"swapdesk-backend/internal/pkg/response"
)

// ErrorHandler is the global error handler. Service-layer error kinds map
// onto stable HTTP statuses; anything unrecognized is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.Error(c, "Trade validation failed", fiber.StatusUnprocessableEntity,
			map[string]interface{}{"violations": verr.Violations})
	case errors.Is(err, apperrors.ErrTradeNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return response.Forbidden(c, "User is Forbidden from performing this action")
	case errors.Is(err, apperrors.ErrReferenceDataMissing):
		return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
	case errors.Is(err, apperrors.ErrInvalidScheduleFormat),
		errors.Is(err, apperrors.ErrInvalidQueryArgument),
		errors.Is(err, apperrors.ErrUnknownQueryField):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}

	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
		message = ferr.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	}
	return response.Error(c, message, code, map[string]interface{}{})
}
