package models

import "time"

// User is an account able to sign in and save calculations.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Profile holds the farm details a user can edit.
type Profile struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	FarmName       string    `bson:"farm_name" json:"farm_name"`
	Location       string    `bson:"location" json:"location"`
	PreferredCrops []string  `bson:"preferred_crops" json:"preferred_crops"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
