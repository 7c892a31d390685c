package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

type stubSession struct {
	state      domain.SessionState
	awaited    *domain.SessionState
	loginFn    func(ctx context.Context, in domain.LoginInput) (domain.Identity, error)
	registerFn func(ctx context.Context, in domain.RegisterInput) (domain.Identity, error)
	externalFn func(ctx context.Context, token string) (domain.Identity, error)
	client     ports.SessionClient
	loggedOut  bool
}

func (s *stubSession) State() domain.SessionState { return s.state }

func (s *stubSession) Await(context.Context) domain.SessionState {
	if s.awaited != nil {
		return *s.awaited
	}
	return s.state
}

func (s *stubSession) Login(ctx context.Context, in domain.LoginInput) (domain.Identity, error) {
	return s.loginFn(ctx, in)
}

func (s *stubSession) Register(ctx context.Context, in domain.RegisterInput) (domain.Identity, error) {
	return s.registerFn(ctx, in)
}

func (s *stubSession) Logout(context.Context) { s.loggedOut = true }

func (s *stubSession) AcceptExternalToken(ctx context.Context, token string) (domain.Identity, error) {
	return s.externalFn(ctx, token)
}

func (s *stubSession) Client() ports.SessionClient { return s.client }

type stubProvider struct {
	session ports.SessionService
}

func (p stubProvider) Session(context.Context, string) ports.SessionService { return p.session }
func (p stubProvider) Forget(string) {}

// stubClient exposes only a transport; auth calls are not expected.
type stubClient struct {
	transport http.RoundTripper
}

func (c *stubClient) Login(context.Context, domain.LoginInput) (domain.AuthResult, error) {
	panic("unexpected Login")
}

func (c *stubClient) Register(context.Context, domain.RegisterInput) (domain.AuthResult, error) {
	panic("unexpected Register")
}

func (c *stubClient) Me(context.Context) (domain.Identity, error) {
	panic("unexpected Me")
}

func (c *stubClient) Subscribe(ports.InvalidationFunc) {}

func (c *stubClient) Transport() http.RoundTripper { return c.transport }

// serve runs h behind the session middleware the way the router does.
func serve(h echo.HandlerFunc, session ports.SessionService, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	bound := middleware.Session(stubProvider{session: session}, middleware.CookieConfig{})(h)
	if err := bound(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func identity(role domain.Role) domain.Identity {
	return domain.Identity{ID: "7", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Role: role}
}
