package dataset

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "packages"

// MongoStore persists the dataset in a MongoDB collection, one document per
// package keyed by name. Intended for hosted deployments where several
// consumers read the dataset; CLI usage normally sticks with [FileStore].
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	target string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
// uri is a standard connection string (mongodb://...); db names the database
// holding the packages collection.
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(mongoCollection),
		target: fmt.Sprintf("%s/%s.%s", uri, db, mongoCollection),
	}, nil
}

// Load reads all package documents into a Dataset.
func (s *MongoStore) Load(ctx context.Context) (Dataset, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	var records []PackageInfo
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	d := make(Dataset, len(records))
	for _, r := range records {
		d[r.Name] = r
	}
	return d, nil
}

// Save upserts every package document by name.
func (s *MongoStore) Save(ctx context.Context, d Dataset) error {
	if len(d) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(d))
	for name, info := range d {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "name", Value: name}}).
			SetReplacement(info).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.coll.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// Describe returns the MongoDB target.
func (s *MongoStore) Describe() string { return s.target }

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
