package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
)

// PageHandler renders the view model of a gated page. Rendering the page
// itself is the browser's job.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Route  string            `json:"route"`
	Page   string            `json:"page"`
	User   *userView         `json:"user"`
	Nav    []domain.NavItem  `json:"nav"`
	Params map[string]string `json:"params,omitempty"`
}

// Render returns the handler for rule. It runs behind the gate.
func (h *PageHandler) Render(rule domain.RouteRule) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, ok := middleware.StateFrom(c)
		if !ok {
			session, err := boundSession(c)
			if err != nil {
				return err
			}
			state = session.State()
		}

		resp := pageResponse{
			Route: rule.Path,
			Page:  rule.Page,
			User:  toUserView(state.Identity),
			Nav:   domain.NavItems(state.Role()),
		}
		if names := c.ParamNames(); len(names) > 0 {
			resp.Params = make(map[string]string, len(names))
			for _, name := range names {
				resp.Params[name] = c.Param(name)
			}
		}
		if resp.Nav == nil {
			resp.Nav = []domain.NavItem{}
		}
		return c.JSON(http.StatusOK, resp)
	}
}
