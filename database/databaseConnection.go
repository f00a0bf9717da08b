package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	OrderCollection        = "orders"
	MenuItemCollection     = "menu_items"
	OptionGroupCollection  = "keuzemenus"
	DeliveryAreaCollection = "delivery_areas"
	CartCollection         = "carts"
	UserCollection         = "users"
)

// DBinstance connects to MongoDB and pings the primary.
func DBinstance(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is not set")
	}

	log.Println("Connecting to MongoDB...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("Connected to MongoDB")
	return client, nil
}

func OpenCollection(client *mongo.Client, dbName, collectionName string) *mongo.Collection {
	return client.Database(dbName).Collection(collectionName)
}

// EnsureIndexes creates the indexes the stores rely on. Uniqueness of order
// ids and user emails is enforced here.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		OrderCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "order_date", Value: -1}}},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		DeliveryAreaCollection: {
			{Keys: bson.D{{Key: "zip_code", Value: 1}, {Key: "active", Value: 1}}},
		},
		MenuItemCollection: {
			{Keys: bson.D{{Key: "title", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
