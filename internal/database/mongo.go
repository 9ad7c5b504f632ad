package database

import (
	"context"
	"fmt"
	"time"

	"ruleform/internal/catalog"
	"ruleform/internal/logger"
	"ruleform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchSize = 1000

// MongoDB stores the catalog as one document per column record.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB at %s", uri)

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// LoadCatalog reads every record of collectionName, ordered by datasource,
// table and insertion.
func (m *MongoDB) LoadCatalog(collectionName string) (*catalog.Catalog, error) {
	collection := m.Database.Collection(collectionName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "datasource", Value: 1}, {Key: "table", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ColumnRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog records: %w", err)
	}

	logger.Info("Loaded %d catalog records from collection '%s'", len(records), collectionName)
	return catalog.FromRecords(records), nil
}

// ImportCatalog writes records into collectionName. With dropExisting the
// collection is replaced in batches; otherwise each record is upserted so
// existing entries are not duplicated. It returns the number of records
// that were new.
func (m *MongoDB) ImportCatalog(collectionName string, records []models.ColumnRecord, dropExisting bool) (int, error) {
	collection := m.Database.Collection(collectionName)

	if dropExisting {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := collection.Drop(ctx); err != nil {
			logger.Warn("failed to drop collection %s: %v", collectionName, err)
		}

		var documents []interface{}
		for _, r := range records {
			documents = append(documents, r)
			if len(documents) >= batchSize {
				if err := m.insertBatch(collection, documents); err != nil {
					return 0, err
				}
				documents = documents[:0]
			}
		}
		if len(documents) > 0 {
			if err := m.insertBatch(collection, documents); err != nil {
				return 0, err
			}
		}
		logger.Info("Import completed: %d records into collection '%s'", len(records), collectionName)
		return len(records), nil
	}

	inserted := 0
	for _, r := range records {
		wasUpdate, err := m.UpsertRecord(collectionName, r)
		if err != nil {
			return inserted, err
		}
		if !wasUpdate {
			inserted++
		}
	}
	logger.Info("Import completed: %d new of %d records in collection '%s'", inserted, len(records), collectionName)
	return inserted, nil
}

// UpsertRecord inserts record unless an identical datasource/table/column
// entry exists. It reports whether the entry was already there.
func (m *MongoDB) UpsertRecord(collectionName string, record models.ColumnRecord) (bool, error) {
	collection := m.Database.Collection(collectionName)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"datasource": record.Datasource, "table": record.Table, "column": record.Column}
	opts := options.Replace().SetUpsert(true)
	result, err := collection.ReplaceOne(ctx, filter, record, opts)
	if err != nil {
		return false, fmt.Errorf("failed to upsert %s:%s %s: %w", record.Datasource, record.Table, record.Column, err)
	}
	return result.MatchedCount > 0, nil
}

func (m *MongoDB) insertBatch(collection *mongo.Collection, documents []interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := collection.InsertMany(ctx, documents)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	logger.Info("Inserted batch of %d documents", len(documents))
	return nil
}
