package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

// boundSession fetches the session bound by the Session middleware. A missing
// session means the route was registered without it.
func boundSession(c echo.Context) (ports.SessionService, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, domain.ErrSessionNotFound.Error())
	}
	return s, nil
}

// userView is the identity as rendered to the browser.
type userView struct {
	ID        domain.UserID `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Role      domain.Role   `json:"role"`
}

func toUserView(id *domain.Identity) *userView {
	if id == nil {
		return nil
	}
	return &userView{ID: id.ID, FirstName: id.FirstName, LastName: id.LastName, Email: id.Email, Role: id.Role}
}

// errorResponse is the error envelope rendered by handlers.
type errorResponse struct {
	Error string `json:"error"`
}
