package validators

import "go.mongodb.org/mongo-driver/bson"

var PatientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"first_name",
			"last_name",
			"contact_number",
			"address",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"contact_number": bson.M{
				"bsonType":  "string",
				"minLength": 6,
				"maxLength": 20,
			},

			"address": bson.M{
				"bsonType": "object",
				"required": []string{"street_number", "street_name", "suburb", "state", "postcode"},
				"properties": bson.M{
					"street_number": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
					},
					"street_name": bson.M{
						"bsonType":  "string",
						"minLength": 1,
						"maxLength": 200,
					},
					"suburb": bson.M{
						"bsonType":  "string",
						"minLength": 1,
						"maxLength": 100,
					},
					"state": bson.M{
						"bsonType": "string",
						"enum": []string{
							"Victoria",
							"Queensland",
							"South Australia",
							"Western Australia",
							"Australian Capital Territory",
							"New South Wales",
							"Tasmania",
							"Northern Territory",
						},
					},
					"postcode": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  200,
						"maximum":  9999,
					},
				},
			},

			"gender": bson.M{
				"bsonType": "string",
				"enum":     []string{"male", "female", "other", "prefer not to say"},
			},

			"age": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  150,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
