package api

import (
	"github.com/labstack/echo/v4"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/usecase"
	xhttp "GoldPredict/pkg/http"
	xlogger "GoldPredict/pkg/logger"
)

type PriceHandler struct {
	logger *xlogger.Logger
	prices *usecase.PriceQuery
}

func NewPriceHandler(logger *xlogger.Logger, prices *usecase.PriceQuery) *PriceHandler {
	return &PriceHandler{logger: logger, prices: prices}
}

func (h *PriceHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/prices")
	g.GET("/current", h.Current)
	g.GET("/today", h.Today)
	g.GET("/history", h.History)
}

func (h *PriceHandler) Current(c echo.Context) error {
	rec, err := h.prices.Current(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "current price", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, rec)
}

func (h *PriceHandler) Today(c echo.Context) error {
	rec, err := h.prices.Today(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "today price", err)
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *PriceHandler) History(c echo.Context) error {
	req := &models.PriceHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	recs, err := h.prices.History(c.Request().Context(), req.Days)
	if err != nil {
		return respondError(c, h.logger, "price history", err)
	}
	return xhttp.SuccessResponse(c, recs)
}
