package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	RegisteredFacesCollection  = "registered_faces"
	AttendanceEventsCollection = "attendance_events"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func New(ctx context.Context, uri, database string, log *logrus.Logger) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetAppName("face-attendance").
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := &DB{Client: client, Database: client.Database(database)}
	if err := db.EnsureIndexes(connectCtx); err != nil {
		log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Failed to ensure mongodb indexes")
	}

	log.WithFields(logrus.Fields{
		"database": database,
	}).Info("Connected to MongoDB")

	return db, nil
}

func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.Database.Collection(RegisteredFacesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("registered_faces indexes: %w", err)
	}

	_, err = d.Database.Collection(AttendanceEventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "checkin_time", Value: -1}}},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "checkin_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("attendance_events indexes: %w", err)
	}

	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
