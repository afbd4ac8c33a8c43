package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"speech-coach/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const analysesCollection = "analyses"

type MongoClient struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Client = (*MongoClient)(nil)

func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	collection := client.Database(database).Collection(analysesCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error creating createdAt index: %w", err)
	}

	return &MongoClient{client: client, collection: collection}, nil
}

func (db *MongoClient) Close() error {
	if db.client != nil {
		return db.client.Disconnect(context.Background())
	}
	return nil
}

func (db *MongoClient) StoreAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if err := prepareRecord(record); err != nil {
		return err
	}

	if _, err := db.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("error storing analysis: %w", err)
	}
	return nil
}

func (db *MongoClient) GetAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := db.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.AnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding analyses: %w", err)
	}
	return records, nil
}

func (db *MongoClient) GetAnalysis(ctx context.Context, id string) (models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := db.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AnalysisRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return models.AnalysisRecord{}, fmt.Errorf("failed to get analysis: %w", err)
	}
	return record, nil
}

func (db *MongoClient) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := db.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
