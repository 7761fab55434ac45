package db

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/scdlbot/scdl/pkg/config"
	"github.com/scdlbot/scdl/pkg/core/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database encapsulates the MongoDB connection, collections, and caches.
type Database struct {
	Client    *mongo.Client
	DB        *mongo.Database
	UserDB    *mongo.Collection
	BotDB     *mongo.Collection
	UserCache *cache.Cache[map[string]interface{}]
}

// Instance is the global singleton for the database.
var Instance *Database

// InitDatabase initializes the database connection and sets up the global instance.
// It returns an error if the connection fails or pinging the database is unsuccessful.
func InitDatabase(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Conf.MongoUri))
	if err != nil {
		return err
	}

	db := client.Database(config.Conf.DbName)

	Instance = &Database{
		Client:    client,
		DB:        db,
		UserDB:    db.Collection("users"),
		BotDB:     db.Collection("bot"),
		UserCache: cache.NewCache[map[string]interface{}](20 * time.Minute),
	}

	if err := Instance.Ping(ctx); err != nil {
		return err
	}

	log.Println("[DB] The database connection has been successfully established.")
	return nil
}

// Ping verifies the connection to the MongoDB server.
// It returns an error if the connection is not active.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

// ----------------- USERS -----------------

// AddUser adds a new user to the database if they do not already exist.
func (db *Database) AddUser(ctx context.Context, userID int64) error {
	key := toKey(userID)

	// Check cache first to avoid unnecessary database operations.
	if _, ok := db.UserCache.Get(key); ok {
		return nil
	}

	_, err := db.UserDB.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": bson.M{"first_seen": time.Now().Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	db.UserCache.Set(key, map[string]interface{}{})
	return nil
}

// RemoveUser removes a user from the database and cache. Used when a
// broadcast reveals the user blocked or deleted the bot.
func (db *Database) RemoveUser(ctx context.Context, userID int64) error {
	key := toKey(userID)

	_, err := db.UserDB.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return err
	}

	db.UserCache.Delete(key)
	return nil
}

// IsUserExist checks if a user exists in the database.
func (db *Database) IsUserExist(ctx context.Context, userID int64) (bool, error) {
	key := toKey(userID)

	if _, ok := db.UserCache.Get(key); ok {
		return true, nil
	}

	var result bson.M
	err := db.UserDB.FindOne(ctx, bson.M{"_id": userID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	db.UserCache.Set(key, map[string]interface{}{})
	return true, nil
}

// GetAllUsers retrieves a list of all user IDs from the database.
func (db *Database) GetAllUsers(ctx context.Context) ([]int64, error) {
	cursor, err := db.UserDB.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []int64
	for cursor.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.ID)

		// Cache each user to optimize future lookups.
		db.UserCache.Set(toKey(doc.ID), map[string]interface{}{})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the number of registered users.
func (db *Database) CountUsers(ctx context.Context) (int64, error) {
	return db.UserDB.CountDocuments(ctx, bson.M{})
}

// ----------------- COUNTERS -----------------

// IncrementDownloads bumps the global delivered-tracks counter.
func (db *Database) IncrementDownloads(ctx context.Context) error {
	_, err := db.BotDB.UpdateOne(ctx,
		bson.M{"_id": "counters"},
		bson.M{"$inc": bson.M{"downloads": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetDownloadCount returns the total number of delivered tracks.
func (db *Database) GetDownloadCount(ctx context.Context) int64 {
	var doc struct {
		Downloads int64 `bson:"downloads"`
	}
	err := db.BotDB.FindOne(ctx, bson.M{"_id": "counters"}).Decode(&doc)
	if err != nil {
		return 0
	}
	return doc.Downloads
}

// Close gracefully closes the database connection.
func (db *Database) Close(ctx context.Context) error {
	log.Println("[DB] Closing the database connection...")
	return db.Client.Disconnect(ctx)
}
