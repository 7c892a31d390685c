package apiclient

import (
	"context"
	"strings"
	"sync"

	"github.com/gympulse/gateway/internal/core/domain"
)

type navigationKey struct{}
type recorderKey struct{}

// WithNavigation attaches the browser's current navigation target to ctx. The
// transport uses it to decide whether an invalidation should navigate.
func WithNavigation(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, navigationKey{}, path)
}

// NavigationFrom returns the navigation target carried by ctx, if any.
func NavigationFrom(ctx context.Context) string {
	path, _ := ctx.Value(navigationKey{}).(string)
	return path
}

// IsAuthScreen reports whether path is the login or registration screen.
func IsAuthScreen(path string) bool {
	return strings.HasPrefix(path, domain.PathLogin) || strings.HasPrefix(path, domain.PathRegister)
}

// Recorder captures the invalidation raised by requests made with its
// context.
type Recorder struct {
	mu  sync.Mutex
	inv *domain.Invalidation
}

// WithRecorder returns a context whose requests report invalidations to the
// returned Recorder.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// Invalidated returns the recorded invalidation.
func (r *Recorder) Invalidated() (domain.Invalidation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inv == nil {
		return domain.Invalidation{}, false
	}
	return *r.inv, true
}

func (r *Recorder) record(inv domain.Invalidation) {
	r.mu.Lock()
	r.inv = &inv
	r.mu.Unlock()
}

func recorderFrom(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}
