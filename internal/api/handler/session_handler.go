package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/service"
)

// SessionHandler exposes the session state to the browser.
type SessionHandler struct {
	wait time.Duration
}

func NewSessionHandler(wait time.Duration) *SessionHandler {
	return &SessionHandler{wait: wait}
}

type sessionResponse struct {
	Status    domain.SessionStatus `json:"status"`
	User      *userView            `json:"user"`
	Home      string               `json:"home,omitempty"`
	Nav       []domain.NavItem     `json:"nav"`
	CSRFToken string               `json:"csrfToken,omitempty"`
}

// Get reports the session state, waiting briefly for a pending resolution.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	session, err := boundSession(c)
	if err != nil {
		return err
	}
	state := session.State()
	if state.IsLoading() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.wait)
		state = session.Await(ctx)
		cancel()
	}

	resp := sessionResponse{
		Status:    state.Status,
		User:      toUserView(state.Identity),
		Nav:       domain.NavItems(state.Role()),
		CSRFToken: middleware.CSRFToken(c),
	}
	if state.IsAuthenticated() {
		resp.Home = service.HomeFor(state.Identity.Role)
	}
	if resp.Nav == nil {
		resp.Nav = []domain.NavItem{}
	}
	return c.JSON(http.StatusOK, resp)
}
