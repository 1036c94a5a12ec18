package api

import (
	"github.com/labstack/echo/v4"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/usecase"
	xhttp "GoldPredict/pkg/http"
	xlogger "GoldPredict/pkg/logger"
)

type ProfileHandler struct {
	logger   *xlogger.Logger
	profiles *usecase.ProfileService
	auth     *Authenticator
}

func NewProfileHandler(logger *xlogger.Logger, profiles *usecase.ProfileService, auth *Authenticator) *ProfileHandler {
	return &ProfileHandler{logger: logger, profiles: profiles, auth: auth}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/users/profile", h.auth.Middleware())
	g.GET("", h.Get)
	g.PUT("", h.Update)
}

func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), CurrentUser(c).UserID)
	if err != nil {
		return respondError(c, h.logger, "get profile", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *ProfileHandler) Update(c echo.Context) error {
	req := &models.UpdateProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	user := CurrentUser(c)
	p, err := h.profiles.Update(c.Request().Context(), user.UserID, user.WalletAddress, req.Username)
	if err != nil {
		return respondError(c, h.logger, "update profile", err)
	}
	return xhttp.SuccessResponse(c, p)
}
