package model

import "time"

// Token is the single persisted refresh token for a user. CreatedAt drives
// the collection's TTL index, so an expired record disappears on its own.
type Token struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Token     string    `json:"token" bson:"token" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
