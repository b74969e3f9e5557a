package model

import "time"

type Doctor struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	FirstName  string    `json:"first_name" bson:"first_name" validate:"required,min=1,max=100"`
	LastName   string    `json:"last_name" bson:"last_name" validate:"required,min=1,max=100"`
	Gender     string    `json:"gender" bson:"gender" validate:"required,oneof=male female other 'prefer not to say'"`
	Experience int       `json:"experience" bson:"experience" validate:"min=0"`
	Speciality string    `json:"speciality" bson:"speciality" validate:"required,min=2,max=100"`
	Bio        string    `json:"bio,omitempty" bson:"bio,omitempty" validate:"omitempty,max=2000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type DoctorUpdate struct {
	FirstName  string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName   string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Gender     string `json:"gender,omitempty" validate:"omitempty,oneof=male female other 'prefer not to say'"`
	Experience *int   `json:"experience,omitempty" validate:"omitempty,min=0"`
	Speciality string `json:"speciality,omitempty" validate:"omitempty,min=2,max=100"`
	Bio        string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}
