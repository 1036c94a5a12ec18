package api

import (
	"github.com/labstack/echo/v4"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/usecase"
	xhttp "GoldPredict/pkg/http"
	xlogger "GoldPredict/pkg/logger"
)

type LeaderboardHandler struct {
	logger *xlogger.Logger
	board  *usecase.Leaderboard
	auth   *Authenticator
}

func NewLeaderboardHandler(logger *xlogger.Logger, board *usecase.Leaderboard, auth *Authenticator) *LeaderboardHandler {
	return &LeaderboardHandler{logger: logger, board: board, auth: auth}
}

func (h *LeaderboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/leaderboard")
	g.GET("/points", h.top(models.LeaderboardPoints))
	g.GET("/accuracy", h.top(models.LeaderboardAccuracy))
	g.GET("/streak", h.top(models.LeaderboardStreak))

	e.GET("/api/users/me/stats", h.MyStats, h.auth.Middleware())
}

func (h *LeaderboardHandler) top(kind models.LeaderboardKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &models.LeaderboardRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
		entries, err := h.board.Top(c.Request().Context(), kind, req.Limit)
		if err != nil {
			return respondError(c, h.logger, string(kind)+" leaderboard", err)
		}
		return xhttp.SuccessResponse(c, entries)
	}
}

func (h *LeaderboardHandler) MyStats(c echo.Context) error {
	st, err := h.board.Stats(c.Request().Context(), CurrentUser(c).UserID)
	if err != nil {
		return respondError(c, h.logger, "user stats", err)
	}
	return xhttp.SuccessResponse(c, st)
}
