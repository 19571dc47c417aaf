package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicops/incident-api/internal/core/domain"
)

const collectionIncidents = "incidents"

// IncidentRepository implements ports.IncidentRepository using MongoDB.
// User references are embedded as summaries, so reads never join.
type IncidentRepository struct {
	col *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{col: db.Collection(collectionIncidents)}
}

type userRefDoc struct {
	ID       string `bson:"id"`
	Username string `bson:"username"`
	Email    string `bson:"email,omitempty"`
	Role     string `bson:"role"`
}

type incidentDoc struct {
	ID           string      `bson:"_id"`
	Description  string      `bson:"description"`
	Status       string      `bson:"status"`
	IncidentType string      `bson:"incident_type"`
	CreatedBy    *userRefDoc `bson:"created_by,omitempty"`
	AssignedBy   *userRefDoc `bson:"assigned_by,omitempty"`
	AssignedTo   *userRefDoc `bson:"assigned_to,omitempty"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

func toRefDoc(r *domain.UserRef) *userRefDoc {
	if r == nil {
		return nil
	}
	return &userRefDoc{ID: r.ID, Username: r.Username, Email: r.Email, Role: string(r.Role)}
}

func (d *userRefDoc) toDomain() *domain.UserRef {
	if d == nil {
		return nil
	}
	return &domain.UserRef{ID: d.ID, Username: d.Username, Email: d.Email, Role: domain.Role(d.Role)}
}

func toIncidentDoc(i *domain.Incident) incidentDoc {
	return incidentDoc{
		ID:           i.ID,
		Description:  i.Description,
		Status:       string(i.Status),
		IncidentType: string(i.IncidentType),
		CreatedBy:    toRefDoc(i.CreatedBy),
		AssignedBy:   toRefDoc(i.AssignedBy),
		AssignedTo:   toRefDoc(i.AssignedTo),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (d incidentDoc) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:           d.ID,
		Description:  d.Description,
		Status:       domain.IncidentStatus(d.Status),
		IncidentType: domain.IncidentType(d.IncidentType),
		CreatedBy:    d.CreatedBy.toDomain(),
		AssignedBy:   d.AssignedBy.toDomain(),
		AssignedTo:   d.AssignedTo.toDomain(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// Create inserts a new incident document, stamping both timestamps.
func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toIncidentDoc(incident)
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d incidentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return d.toDomain(), nil
}

// List returns every incident ordered by creation time.
func (r *IncidentRepository) List(ctx context.Context) ([]*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer cur.Close(ctx)

	var docs []incidentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	out := make([]*domain.Incident, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update overwrites the mutable fields and returns the stored document.
func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"description":   incident.Description,
		"status":        string(incident.Status),
		"incident_type": string(incident.IncidentType),
		"assigned_by":   toRefDoc(incident.AssignedBy),
		"assigned_to":   toRefDoc(incident.AssignedTo),
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}

	var d incidentDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": incident.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return d.toDomain(), nil
}

// EnsureIndexes creates the indexes used by listing.
func (r *IncidentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
