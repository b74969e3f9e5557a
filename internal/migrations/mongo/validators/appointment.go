package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"doctor_id",
			"appointment_slot",
			"booked",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"doctor_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"appointment_slot": bson.M{
				"bsonType": "object",
				"required": []string{"start_time", "end_time"},
				"properties": bson.M{
					"start_time": bson.M{"bsonType": "date"},
					"end_time":   bson.M{"bsonType": "date"},
				},
			},

			"booked": bson.M{
				"bsonType": "bool",
			},

			"booked_by": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
