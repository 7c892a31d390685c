package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

const activityCollection = "session_events"

// sessionEventDoc is the stored form of a domain.SessionEvent.
type sessionEventDoc struct {
	Type       string    `bson:"type"`
	SessionKey string    `bson:"session_key"`
	UserID     string    `bson:"user_id,omitempty"`
	Role       string    `bson:"role,omitempty"`
	From       string    `bson:"from"`
	To         string    `bson:"to"`
	Reason     string    `bson:"reason,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func toDocument(ev domain.SessionEvent) sessionEventDoc {
	doc := sessionEventDoc{
		Type:       string(ev.Type),
		SessionKey: ev.SessionKey,
		UserID:     string(ev.UserID),
		From:       ev.From.String(),
		To:         ev.To.String(),
		Reason:     ev.Reason,
		OccurredAt: ev.OccurredAt.UTC(),
	}
	if ev.Role.IsValid() {
		doc.Role = ev.Role.String()
	}
	return doc
}

func (d sessionEventDoc) toDomain() domain.SessionEvent {
	return domain.SessionEvent{
		Type:       domain.SessionEventType(d.Type),
		SessionKey: d.SessionKey,
		UserID:     domain.UserID(d.UserID),
		Role:       domain.ParseRole(d.Role),
		From:       parseStatus(d.From),
		To:         parseStatus(d.To),
		Reason:     d.Reason,
		OccurredAt: d.OccurredAt,
	}
}

func parseStatus(s string) domain.SessionStatus {
	switch s {
	case "authenticated":
		return domain.StatusAuthenticated
	case "unauthenticated":
		return domain.StatusUnauthenticated
	default:
		return domain.StatusLoading
	}
}

// ActivityRepository persists session events to the session_events audit
// collection.
type ActivityRepository struct {
	col       *mongo.Collection
	retention time.Duration
}

var _ ports.ActivitySink = (*ActivityRepository)(nil)

// NewActivityRepository creates an ActivityRepository. A positive retention
// makes EnsureIndexes add a TTL index on occurred_at.
func NewActivityRepository(db *mongo.Database, retention time.Duration) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(activityCollection), retention: retention}
}

// Record inserts one event.
func (r *ActivityRepository) Record(ctx context.Context, event domain.SessionEvent) error {
	_, err := r.col.InsertOne(ctx, toDocument(event))
	return err
}

// Recent returns the latest events of one session, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, sessionKey string, limit int64) ([]domain.SessionEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"session_key": sessionKey}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []sessionEventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]domain.SessionEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

// EnsureIndexes creates necessary indexes on the session_events collection.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_key", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if r.retention > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(r.retention / time.Second)),
		})
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
