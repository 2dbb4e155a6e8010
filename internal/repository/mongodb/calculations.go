package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// InsertCalculation saves a calculation snapshot to the database.
func (r *MongoDBRepository) InsertCalculation(ctx context.Context, calc models.SavedCalculation) error {
	if _, err := r.db.Collection(calculationsCollection).InsertOne(ctx, calc); err != nil {
		return fmt.Errorf("failed to insert calculation: %w", translateError(err))
	}
	return nil
}

// ListCalculations returns the newest calculations of a user, at most limit of them.
func (r *MongoDBRepository) ListCalculations(ctx context.Context, userID string, limit int) ([]models.SavedCalculation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(calculationsCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer cursor.Close(ctx)

	calcs := make([]models.SavedCalculation, 0, limit)
	if err := cursor.All(ctx, &calcs); err != nil {
		return nil, fmt.Errorf("failed to decode calculations: %w", err)
	}
	return calcs, nil
}

// FindCalculation returns a calculation owned by userID.
func (r *MongoDBRepository) FindCalculation(ctx context.Context, userID, id string) (models.SavedCalculation, error) {
	var calc models.SavedCalculation
	err := r.db.Collection(calculationsCollection).FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&calc)
	if err != nil {
		return models.SavedCalculation{}, fmt.Errorf("failed to find calculation: %w", translateError(err))
	}
	return calc, nil
}

// DeleteCalculation removes a calculation owned by userID.
func (r *MongoDBRepository) DeleteCalculation(ctx context.Context, userID, id string) error {
	res, err := r.db.Collection(calculationsCollection).DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
