package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodb "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portal/internal/model"
	"portal/internal/repository"
)

// DocumentMongo is a MongoDB implementation of repository.DocumentRepository.
type DocumentMongo struct {
	coll *mongodb.Collection
}

func NewDocumentMongo(db *mongodb.Database) *DocumentMongo {
	return &DocumentMongo{coll: db.Collection(DocumentsCollection)}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

func (r *DocumentMongo) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	out := *doc
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *DocumentMongo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	var d model.Document
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *DocumentMongo) ListByProject(ctx context.Context, projectID string) ([]model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Document](ctx, cur)
}

func (r *DocumentMongo) TouchAccess(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_accessed": at}})
	if err != nil {
		return err
	}
	return requireMatched(res)
}

func (r *DocumentMongo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *DocumentMongo) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
