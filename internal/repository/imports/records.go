package importitems

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accreditations/internal/common"
	mg "accreditations/internal/config/connections/mongo"
	"accreditations/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordsCollection = "import_records"

// Record is one bulk-import job.
type Record struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Count     int                `bson:"count" json:"count"`
	Status    string             `bson:"status" json:"status"`
	Type      string             `bson:"type" json:"type"`
	Path      string             `bson:"path" json:"path"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func InsertImportRecord(ctx context.Context, m *mg.Mongo, rec Record) (string, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return "", mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	doc := bson.D{
		{Key: "count", Value: rec.Count},
		{Key: "status", Value: rec.Status},
		{Key: "type", Value: rec.Type},
		{Key: "path", Value: rec.Path},
		{Key: "created_at", Value: rec.CreatedAt},
		{Key: "updated_at", Value: rec.UpdatedAt},
	}

	res, err := m.Database.Collection(ImportRecordsCollection).InsertOne(ctx, doc, options.InsertOne())
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

func UpdateImportRecordStatus(ctx context.Context, m *mg.Mongo, id, status string, count int) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if id == "" {
		return fmt.Errorf("empty import record id")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("import record id %q: %w", id, err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"count":      count,
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := m.Database.Collection(ImportRecordsCollection).UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no import_record found with id %s", id)
	}
	return nil
}

// FindImportRecordByID returns common.ErrNotFound for malformed or unknown ids.
func FindImportRecordByID(ctx context.Context, m *mg.Mongo, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return out, fmt.Errorf("import record %q: %w", id, common.ErrNotFound)
	}

	err = m.Database.Collection(ImportRecordsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("import record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("find import record %s: %w", id, err)
	}
	return out, nil
}

func (r Record) status() ports.ImportJobStatus {
	return ports.ImportJobStatus{
		ID:        r.ID.Hex(),
		Type:      r.Type,
		FilePath:  r.Path,
		Status:    r.Status,
		Rows:      r.Count,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
