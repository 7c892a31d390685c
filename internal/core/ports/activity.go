package ports

import (
	"context"

	"github.com/gympulse/gateway/internal/core/domain"
)

// ActivitySink records session events. Sinks are best effort: callers log
// failures and carry on.
type ActivitySink interface {
	Record(ctx context.Context, event domain.SessionEvent) error
}
