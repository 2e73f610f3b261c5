// Package mongo implements the repository interfaces on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodb "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portal/internal/repository"
)

// Collection names.
const (
	CompaniesCollection = "companies"
	ProjectsCollection  = "projects"
	DocumentsCollection = "documents"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongodb.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongodb.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}

func requireMatched(res *mongodb.UpdateResult) error {
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func slugExists(ctx context.Context, coll *mongodb.Collection, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func decodeAll[T any](ctx context.Context, cur *mongodb.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func pageOptions(pq repository.PageQuery, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort).SetSkip(int64(pq.Offset))
	if pq.Limit > 0 {
		opts.SetLimit(int64(pq.Limit))
	}
	return opts
}
