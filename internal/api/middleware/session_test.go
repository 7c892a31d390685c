package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/infrastructure/apiclient"
)

func runSession(t *testing.T, p *recordingProvider, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Session(p, CookieConfig{Name: "sid", Secure: true, MaxAge: time.Hour})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec, c
}

func TestSession_IssuesCookieForNewBrowser(t *testing.T) {
	p := &recordingProvider{session: &stubSession{state: domain.Unauthenticated()}}

	rec, c := runSession(t, p, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "sid" || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.MaxAge != 3600 {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
	if SessionIDFrom(c) != ck.Value || p.ids[0] != ck.Value {
		t.Fatalf("session id not bound: %q vs %q", SessionIDFrom(c), ck.Value)
	}
	if _, ok := SessionFrom(c); !ok {
		t.Fatal("expected session in context")
	}
}

func TestSession_ReusesValidCookie(t *testing.T) {
	const id = "2f1d1c58-2b48-4c3e-9a8e-0b8e1d7f6a11"
	p := &recordingProvider{session: &stubSession{}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})

	rec, _ := runSession(t, p, req)

	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("a known browser must not get a new cookie")
	}
	if p.ids[0] != id {
		t.Fatalf("expected id %s, got %s", id, p.ids[0])
	}
}

func TestSession_ReplacesMalformedCookie(t *testing.T) {
	p := &recordingProvider{session: &stubSession{}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})

	rec, _ := runSession(t, p, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "../../etc/passwd" {
		t.Fatalf("expected a fresh cookie, got %+v", cookies)
	}
}

func TestSession_NavigationTarget(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		header  string
		referer string
		want    string
	}{
		{name: "page request", path: "/dashboard", want: "/dashboard"},
		{name: "reported screen", path: "/api/workouts", header: "/login", referer: "http://app.test/progress", want: "/login"},
		{name: "referer", path: "/api/workouts", referer: "http://app.test/progress?tab=1", want: "/progress"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &recordingProvider{session: &stubSession{}}
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(HeaderCurrentPath, tc.header)
			}
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}

			_, c := runSession(t, p, req)

			if got := apiclient.NavigationFrom(c.Request().Context()); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if got := apiclient.NavigationFrom(p.ctxs[0]); got != tc.want {
				t.Fatalf("provider saw %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRedirectStatus(t *testing.T) {
	if RedirectStatus(http.MethodGet) != http.StatusFound || RedirectStatus(http.MethodHead) != http.StatusFound {
		t.Fatal("safe reads redirect with 302")
	}
	if RedirectStatus(http.MethodPost) != http.StatusSeeOther {
		t.Fatal("form posts redirect with 303")
	}
}
