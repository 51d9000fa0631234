package presence

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "presence"

// Store keeps participant heartbeats in Mongo. Documents expire through a
// TTL index on expires_at, so a participant whose client stops
// heartbeating drops offline without any sweeper.
type Store struct {
	col *mongo.Collection
	ttl time.Duration
}

type heartbeat struct {
	EventID   string    `bson:"event_id"`
	UserID    string    `bson:"user_id"`
	SeenAt    time.Time `bson:"seen_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Connect dials MONGODB_URI, ensures the TTL index and returns the store.
func Connect(ctx context.Context, ttl time.Duration) (*Store, error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, err
	}
	dbName := strings.TrimPrefix(uri.Path, "/")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	col := client.Database(dbName).Collection(collectionName)

	// expires_at drives expiry; 0 lets Mongo use the field value directly
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, err
	}

	return &Store{col: col, ttl: ttl}, nil
}

// Touch upserts a heartbeat for (event, user), pushing expiry forward.
func (s *Store) Touch(ctx context.Context, eventID, userID string) error {
	now := time.Now()
	hb := heartbeat{
		EventID:   eventID,
		UserID:    userID,
		SeenAt:    now,
		ExpiresAt: now.Add(s.ttl),
	}

	filter := bson.M{"event_id": eventID, "user_id": userID}
	update := bson.M{"$set": hb}
	opts := options.Update().SetUpsert(true)

	_, err := s.col.UpdateOne(ctx, filter, update, opts)
	return err
}

// Remove deletes the heartbeat on an explicit leave.
func (s *Store) Remove(ctx context.Context, eventID, userID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	return err
}

// Online lists the user ids with a live heartbeat for the event.
func (s *Store) Online(ctx context.Context, eventID string) ([]string, error) {
	cursor, err := s.col.Find(ctx, bson.M{
		"event_id":   eventID,
		"expires_at": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []string
	for cursor.Next(ctx) {
		var hb heartbeat
		if err := cursor.Decode(&hb); err != nil {
			return nil, err
		}
		users = append(users, hb.UserID)
	}

	return users, cursor.Err()
}
