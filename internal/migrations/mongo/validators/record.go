package validators

import "go.mongodb.org/mongo-driver/bson"

var nullableString = bson.M{"bsonType": []string{"string", "null"}}

var RecordValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"created_at",
			"source",
			"name",
			"description",
			"tags",
			"active",
			"quantity",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}$",
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
			"source": bson.M{
				"bsonType": "string",
				"enum":     []string{"http", "kafka"},
			},
			"name":        bson.M{"bsonType": "string"},
			"description": bson.M{"bsonType": "string"},
			"code":        nullableString,
			"code_family": bson.M{
				"bsonType": "string",
				"enum":     []string{"disposalcode", "recoverycode", "lowcode"},
			},
			"address": bson.M{
				"bsonType": []string{"object", "null"},
				"properties": bson.M{
					"address":     nullableString,
					"city":        nullableString,
					"postal_code": nullableString,
					"country":     nullableString,
					"type":        nullableString,
					"gps": bson.M{
						"bsonType": []string{"array", "null"},
						"maxItems": 2,
						"items":    bson.M{"bsonType": "double"},
					},
				},
			},
			"tags": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},
			"active":   bson.M{"bsonType": "bool"},
			"quantity": bson.M{"bsonType": "long"},
		},
	},
}
