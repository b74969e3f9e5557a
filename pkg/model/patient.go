package model

import "time"

// AustralianStates is the closed set accepted for Address.State.
var AustralianStates = []string{
	"Victoria",
	"Queensland",
	"South Australia",
	"Western Australia",
	"Australian Capital Territory",
	"New South Wales",
	"Tasmania",
	"Northern Territory",
}

type Address struct {
	StreetNumber int    `json:"street_number" bson:"street_number" validate:"required,min=1"`
	StreetName   string `json:"street_name" bson:"street_name" validate:"required,min=1,max=200"`
	Suburb       string `json:"suburb" bson:"suburb" validate:"required,min=1,max=100"`
	State        string `json:"state" bson:"state" validate:"required,au_state"`
	Postcode     int    `json:"postcode" bson:"postcode" validate:"required,min=200,max=9999"`
}

type Patient struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	FirstName     string    `json:"first_name" bson:"first_name" validate:"required,min=1,max=100"`
	LastName      string    `json:"last_name" bson:"last_name" validate:"required,min=1,max=100"`
	ContactNumber string    `json:"contact_number" bson:"contact_number" validate:"required,min=6,max=20"`
	Address       Address   `json:"address" bson:"address" validate:"required"`
	Gender        string    `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female other 'prefer not to say'"`
	Age           *int      `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,min=0,max=150"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type PatientUpdate struct {
	FirstName     string   `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName      string   `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	ContactNumber string   `json:"contact_number,omitempty" validate:"omitempty,min=6,max=20"`
	Address       *Address `json:"address,omitempty" validate:"omitempty"`
	Gender        string   `json:"gender,omitempty" validate:"omitempty,oneof=male female other 'prefer not to say'"`
	Age           *int     `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
}
