package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection             = "users"
	appointmentsCollection      = "appointments"
	intakesCollection           = "medicationIntakes"
	caretakerRequestsCollection = "caretakerRequests"
	visitRequestsCollection     = "medicalVisitRequests"
)

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		appointmentsCollection: {
			// Terminal appointments drop the field, so only live ones collide.
			{Keys: bson.D{{Key: "liveSlotKey", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "patientId", Value: 1}}},
			{Keys: bson.D{{Key: "prescriptions.id", Value: 1}}},
		},
		intakesCollection: {
			{
				Keys:    bson.D{{Key: "prescriptionId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		caretakerRequestsCollection: {
			{Keys: bson.D{{Key: "patientId", Value: 1}}},
			{Keys: bson.D{{Key: "caretakerId", Value: 1}}},
		},
		visitRequestsCollection: {
			{Keys: bson.D{{Key: "patientId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "medicalAssistantId", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func Ping(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, nil)
}
