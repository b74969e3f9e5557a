package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"email", "password", "roles"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"email":    bson.M{"bsonType": "string"},
			"password": bson.M{"bsonType": "string"},
			"roles": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "string",
					"enum":     []string{"user", "doctor", "patient", "admin"},
				},
			},
		},
	},
}
