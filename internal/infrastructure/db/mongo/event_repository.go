package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicops/incident-api/internal/core/domain"
)

const collectionEvents = "incident_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

type eventDoc struct {
	ID          string    `bson:"_id"`
	IncidentID  string    `bson:"incident_id"`
	Status      string    `bson:"status"`
	Actor       string    `bson:"actor,omitempty"`
	OccurredAt  time.Time `bson:"occurred_at"`
	ProcessedAt time.Time `bson:"processed_at"`
}

// Insert appends one entry to the incident_events audit collection.
func (r *EventRepository) Insert(ctx context.Context, event *domain.IncidentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := eventDoc{
		ID:          event.ID,
		IncidentID:  event.IncidentID,
		Status:      string(event.Status),
		Actor:       event.Actor,
		OccurredAt:  event.OccurredAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByIncident(ctx context.Context, incidentID string) ([]*domain.IncidentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"incident_id": incidentID},
		options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	events := make([]*domain.IncidentEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, &domain.IncidentEvent{
			ID:         d.ID,
			IncidentID: d.IncidentID,
			Status:     domain.IncidentStatus(d.Status),
			Actor:      d.Actor,
			OccurredAt: d.OccurredAt.UTC(),
		})
	}
	return events, nil
}

// EnsureIndexes creates the compound index backing ListByIncident.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "incident_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	return err
}
