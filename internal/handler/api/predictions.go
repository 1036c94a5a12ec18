package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/usecase"
	xhttp "GoldPredict/pkg/http"
	xlogger "GoldPredict/pkg/logger"
)

func init() {
	xhttp.RegisterEnum("direction", models.DirectionUp, models.DirectionDown)
	xhttp.RegisterEnum("volatility", models.VolatilitySmall, models.VolatilityMedium, models.VolatilityLarge)
}

// PredictionHandler serves a user's own predictions. Every route requires auth.
type PredictionHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.PredictionService
	auth    *Authenticator
	limiter echo.MiddlewareFunc
}

// NewPredictionHandler wires the routes. limiter wraps submission only and may be nil.
func NewPredictionHandler(logger *xlogger.Logger, svc *usecase.PredictionService, auth *Authenticator, limiter echo.MiddlewareFunc) *PredictionHandler {
	return &PredictionHandler{logger: logger, svc: svc, auth: auth, limiter: limiter}
}

func (h *PredictionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/predictions", h.auth.Middleware())
	if h.limiter != nil {
		g.POST("", h.Submit, h.limiter)
	} else {
		g.POST("", h.Submit)
	}
	g.GET("", h.List)
	g.GET("/today", h.Today)
	g.GET("/:id", h.Get)
}

func (h *PredictionHandler) Submit(c echo.Context) error {
	req := &models.SubmitPredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	user := CurrentUser(c)

	p, err := h.svc.Submit(c.Request().Context(), usecase.SubmitInput{
		UserID:          user.UserID,
		WalletAddress:   user.WalletAddress,
		Direction:       models.Direction(req.PriceDirection),
		VolatilityGuess: models.VolatilityBand(req.VolatilityGuess),
	})
	if err != nil {
		return respondError(c, h.logger, "submit prediction", err)
	}
	return xhttp.CreatedResponse(c, p)
}

func (h *PredictionHandler) List(c echo.Context) error {
	req := &models.ListPredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	page, err := h.svc.List(c.Request().Context(), CurrentUser(c).UserID, req.Page, req.PageSize)
	if err != nil {
		return respondError(c, h.logger, "list predictions", err)
	}
	return xhttp.ListResponse(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Today returns null data when the user has not predicted yet today.
func (h *PredictionHandler) Today(c echo.Context) error {
	p, err := h.svc.Today(c.Request().Context(), CurrentUser(c).UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return xhttp.SuccessResponse(c, nil)
		}
		return respondError(c, h.logger, "today prediction", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PredictionHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), CurrentUser(c).UserID, c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, "get prediction", err)
	}
	return xhttp.SuccessResponse(c, p)
}
