package service

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

const (
	defaultIdleTTL     = 30 * time.Minute
	defaultMaxSessions = 10000
)

// Registry owns one SessionResolver per browser session. It holds at most
// maxSessions resolvers: the least recently used one is evicted when the cap
// is reached, and any resolver idle for longer than the idle TTL expires.
// Eviction drops the in-memory resolver only; the durable token slot is kept,
// so the next request from that browser resolves it again.
type Registry struct {
	slots   ports.TokenSlots
	clients ports.SessionClientFactory
	opts    []ResolverOption
	log     zerolog.Logger

	// mu makes lookup-or-create atomic so one id never gets two resolvers.
	mu       sync.Mutex
	sessions *expirable.LRU[string, *SessionResolver]
}

var _ ports.SessionProvider = (*Registry)(nil)

func NewRegistry(slots ports.TokenSlots, clients ports.SessionClientFactory, idleTTL time.Duration, maxSessions int, log zerolog.Logger, opts ...ResolverOption) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	g := &Registry{
		slots:   slots,
		clients: clients,
		opts:    opts,
		log:     log,
	}
	// Runs under the cache lock: it must not call back into the registry.
	onEvict := func(_ string, r *SessionResolver) {
		log.Debug().Str("session", r.key).Msg("session evicted")
	}
	g.sessions = expirable.NewLRU[string, *SessionResolver](maxSessions, onEvict, idleTTL)
	return g
}

// Session returns the resolver bound to id, creating and starting it on first
// use. Every call pushes the idle deadline back.
func (g *Registry) Session(ctx context.Context, id string) ports.SessionService {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.sessions.Get(id); ok {
		g.sessions.Add(id, r)
		return r
	}

	store := g.slots.Slot(id)
	opts := append([]ResolverOption{WithLogger(g.log)}, g.opts...)
	r := NewSessionResolver(SessionKey(id), store, g.clients.NewSessionClient(store), opts...)
	g.sessions.Add(id, r)
	r.Start(ctx)
	return r
}

func (g *Registry) Forget(id string) {
	g.mu.Lock()
	g.sessions.Remove(id)
	g.mu.Unlock()
}

// Len reports the number of live sessions.
func (g *Registry) Len() int {
	return g.sessions.Len()
}

// SessionKey derives the log-safe identifier of a browser session.
func SessionKey(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

// StateCounter adapts a counter-like callback into a StateListener that fires
// on status changes only.
func StateCounter(inc func(from, to domain.SessionStatus)) StateListener {
	return func(prev, next domain.SessionState) {
		if prev.Status != next.Status {
			inc(prev.Status, next.Status)
		}
	}
}
