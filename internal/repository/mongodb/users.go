package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func (r *MongoDBRepository) CreateUser(ctx context.Context, user models.User) error {
	if _, err := r.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", translateError(err))
	}
	return nil
}

// FindUserByEmail returns the account registered with email.
func (r *MongoDBRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find user: %w", translateError(err))
	}
	return user, nil
}

// DeleteUser removes an account. A missing account yields ErrNotFound.
func (r *MongoDBRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.Collection(usersCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateProfile inserts the profile created alongside a new account.
func (r *MongoDBRepository) CreateProfile(ctx context.Context, profile models.Profile) error {
	if _, err := r.db.Collection(profilesCollection).InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("failed to insert profile: %w", translateError(err))
	}
	return nil
}

// FindProfileByUserID returns the profile owned by userID.
func (r *MongoDBRepository) FindProfileByUserID(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.Collection(profilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to find profile: %w", translateError(err))
	}
	return profile, nil
}

// UpdateProfile overwrites the editable profile fields and returns the stored document.
func (r *MongoDBRepository) UpdateProfile(ctx context.Context, userID, farmName, location string, crops []string, now time.Time) (models.Profile, error) {
	update := bson.M{"$set": bson.M{
		"farm_name":       farmName,
		"location":        location,
		"preferred_crops": crops,
		"updated_at":      now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.Profile
	err := r.db.Collection(profilesCollection).FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&profile)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to update profile: %w", translateError(err))
	}
	return profile, nil
}
