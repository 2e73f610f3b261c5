package migration

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	repomongo "portal/internal/repository/mongo"
)

type collectionIndexes struct {
	Collection string
	Models     []mongo.IndexModel
}

var indexes = []collectionIndexes{
	{
		Collection: repomongo.CompaniesCollection,
		Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
		},
	},
	{
		Collection: repomongo.ProjectsCollection,
		Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{Keys: bson.D{{Key: "company_id", Value: 1}}, Options: options.Index().SetName("company_id")},
		},
	},
	{
		Collection: repomongo.DocumentsCollection,
		Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "storage_key", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_storage_key")},
			{
				Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "uploaded_at", Value: -1}},
				Options: options.Index().SetName("project_uploaded"),
			},
		},
	},
}

// EnsureIndexes creates the unique and lookup indexes. Existing indexes with the
// same definition are left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	log = log.With(zap.String("component", "database"))
	for _, ci := range indexes {
		names, err := db.Collection(ci.Collection).Indexes().CreateMany(ctx, ci.Models)
		if err != nil {
			log.Error("mongo_index_failed", zap.String("collection", ci.Collection), zap.Error(err))
			return fmt.Errorf("create indexes on %s: %w", ci.Collection, err)
		}
		log.Info("mongo_indexes_ready", zap.String("collection", ci.Collection), zap.Strings("indexes", names))
	}
	return nil
}
