package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/api/metrics"
	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/service"
)

// AuthHandler performs the auth actions on behalf of the browser session.
type AuthHandler struct {
	oauthURL string
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewAuthHandler(oauthURL string, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{oauthURL: oauthURL, metrics: m, log: log}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required"`
	LastName  string `json:"lastName" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required"`
	Password  string `json:"password" form:"password" validate:"required"`
	Role      string `json:"role" form:"role" validate:"required,oneof=client pt"`
}

type authResponse struct {
	User     *userView `json:"user"`
	Redirect string    `json:"redirect"`
}

// Login exchanges credentials for a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}
	session, err := boundSession(c)
	if err != nil {
		return err
	}

	identity, err := session.Login(c.Request().Context(), domain.LoginInput{Email: req.Email, Password: req.Password})
	h.metrics.AuthAttempt(domain.OpLogin, err)
	if err != nil {
		return h.failure(c, domain.OpLogin, err)
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserView(&identity), Redirect: service.HomeFor(identity.Role)})
}

// Register creates an account and signs the session in.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  authResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}
	session, err := boundSession(c)
	if err != nil {
		return err
	}

	identity, err := session.Register(c.Request().Context(), domain.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	h.metrics.AuthAttempt(domain.OpRegister, err)
	if err != nil {
		return h.failure(c, domain.OpRegister, err)
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserView(&identity), Redirect: service.HomeFor(identity.Role)})
}

// Logout ends the session. It never fails.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := boundSession(c)
	if err != nil {
		return err
	}
	session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Google starts the external login flow.
//
// @Summary      Start external login
// @Tags         auth
// @Success      302
// @Router       /auth/google [get]
func (h *AuthHandler) Google(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.oauthURL)
}

// Success completes the external login flow with the token the provider
// appended to the callback URL.
//
// @Summary      External login callback
// @Tags         auth
// @Param        token  query  string  true  "Bearer token issued by the API"
// @Success      302
// @Router       /auth/success [get]
func (h *AuthHandler) Success(c echo.Context) error {
	session, err := boundSession(c)
	if err != nil {
		return err
	}
	status := middleware.RedirectStatus(c.Request().Method)

	identity, err := session.AcceptExternalToken(c.Request().Context(), c.QueryParam("token"))
	h.metrics.AuthAttempt("external", err)
	if err != nil {
		h.log.Info().Err(err).Msg("external login rejected")
		return c.Redirect(status, domain.PathLogin)
	}
	return c.Redirect(status, service.HomeFor(identity.Role))
}

// failure renders an auth action error with its display message.
func (h *AuthHandler) failure(c echo.Context, op string, err error) error {
	msg := domain.UserMessage(err, op)

	var ae *domain.AuthError
	switch {
	case errors.As(err, &ae) && errors.Is(err, domain.ErrRejected):
		status := ae.Status
		if status < 400 || status > 499 {
			status = http.StatusUnauthorized
			if op == domain.OpRegister {
				status = http.StatusUnprocessableEntity
			}
		}
		return c.JSON(status, errorResponse{Error: msg})
	default:
		h.log.Warn().Err(err).Str("op", op).Msg("auth action failed")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: msg})
	}
}
