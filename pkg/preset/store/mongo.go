package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	// URI is the connection string. Empty falls back to the
	// STRATA_MONGO_URI environment variable, then to a local default.
	URI string

	// Database defaults to "strata", Collection to "presets".
	Database   string
	Collection string
}

// MongoStore keeps presets in a MongoDB collection, one document per preset
// keyed by a generated UUID with a unique folder+name index for lookups.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the folder+name index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = os.Getenv("STRATA_MONGO_URI")
	}
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "strata"
	}
	if cfg.Collection == "" {
		cfg.Collection = "presets"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "folder", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create preset index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, folder string) ([]Info, error) {
	folder = normalizeFolder(folder)
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "updatedAt": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"folder": folder}, opts)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	defer cur.Close(ctx)

	var infos []Info
	for cur.Next(ctx) {
		var doc struct {
			Name      string    `bson:"name"`
			UpdatedAt time.Time `bson:"updatedAt"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode preset listing: %w", err)
		}
		infos = append(infos, Info{Folder: folder, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	return infos, nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, folder, name string) (*Record, error) {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return nil, err
	}

	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"folder": folder, "name": name}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(folder, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load preset %s/%s: %w", folder, name, err)
	}
	return &rec, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, rec *Record) error {
	folder := normalizeFolder(rec.Folder)
	if err := checkKey(folder, rec.Name); err != nil {
		return err
	}

	stored := *rec
	stored.Folder = folder
	stored.UpdatedAt = time.Now().UTC()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	filter := bson.M{"folder": folder, "name": rec.Name}
	update := bson.M{
		"$set": bson.M{
			"folder":    stored.Folder,
			"name":      stored.Name,
			"data":      stored.Data,
			"updatedAt": stored.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": stored.ID},
	}
	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save preset %s/%s: %w", folder, rec.Name, err)
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, folder, name string) error {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"folder": folder, "name": name})
	if err != nil {
		return fmt.Errorf("delete preset %s/%s: %w", folder, name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(folder, name)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
