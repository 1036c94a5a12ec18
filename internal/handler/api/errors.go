package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"GoldPredict/internal/domain/models"
	xhttp "GoldPredict/pkg/http"
	xlogger "GoldPredict/pkg/logger"
)

// respondError renders err and logs it when it is a server fault.
func respondError(c echo.Context, logger *xlogger.Logger, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(op+" usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto HTTP errors. Unknown errors become 500s
// with the cause kept for the request log.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrDuplicatePrediction):
		return xhttp.ConflictError("you have already made a prediction today").WithError(err)
	case errors.Is(err, models.ErrInvalidDirection):
		return xhttp.BadRequestError("priceDirection must be up or down").
			WithCode("ERR_INVALID_DIRECTION").WithField("priceDirection").WithError(err)
	case errors.Is(err, models.ErrInvalidVolatility):
		return xhttp.BadRequestError("volatilityGuess must be small, medium or large").
			WithCode("ERR_INVALID_VOLATILITY").WithField("volatilityGuess").WithError(err)
	case errors.Is(err, models.ErrInvalidUsername):
		return xhttp.BadRequestError("username must be at most 32 characters").
			WithCode("ERR_INVALID_USERNAME").WithField("username").WithError(err)
	case errors.Is(err, models.ErrNoPriceRecord):
		return xhttp.NotFoundError("price data not available").WithError(err)
	case errors.Is(err, models.ErrUserNotFound):
		return xhttp.NotFoundError("user statistics not found").WithError(err)
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError("not found").WithError(err)
	case errors.Is(err, models.ErrPriceUnavailable):
		return xhttp.UnavailableError("gold price is temporarily unavailable").WithError(err)
	default:
		return xhttp.InternalError("something went wrong").WithError(err)
	}
}
