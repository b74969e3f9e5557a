package model

type User struct {
	ID           string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email        string `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string `json:"-" bson:"password" validate:"required"`
	Roles        []Role `json:"roles" bson:"roles" validate:"required,min=1,dive,oneof=user doctor patient admin"`
}
