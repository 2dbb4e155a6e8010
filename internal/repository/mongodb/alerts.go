package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// InsertAlert stores a weather alert.
func (r *MongoDBRepository) InsertAlert(ctx context.Context, alert models.WeatherAlert) error {
	if _, err := r.db.Collection(alertsCollection).InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("failed to insert alert: %w", translateError(err))
	}
	return nil
}

// ListActiveAlerts returns active alerts that have no expiry or expire after now.
func (r *MongoDBRepository) ListActiveAlerts(ctx context.Context, now time.Time) ([]models.WeatherAlert, error) {
	filter := bson.M{
		"active": true,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(alertsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.WeatherAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}
