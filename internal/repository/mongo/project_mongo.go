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

// ProjectMongo is a MongoDB implementation of repository.ProjectRepository.
// The document id set is the document_ids array, maintained with $addToSet and $pull.
type ProjectMongo struct {
	coll *mongodb.Collection
}

func NewProjectMongo(db *mongodb.Database) *ProjectMongo {
	return &ProjectMongo{coll: db.Collection(ProjectsCollection)}
}

var _ repository.ProjectRepository = (*ProjectMongo)(nil)

var projectSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *ProjectMongo) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	out := *p
	if out.DocumentIDs == nil {
		out.DocumentIDs = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *ProjectMongo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	if p.DocumentIDs == nil {
		p.DocumentIDs = []string{}
	}
	return &p, nil
}

func (r *ProjectMongo) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Project], error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	cur, err := r.coll.Find(ctx, bson.M{}, pageOptions(pq, projectSort))
	if err != nil {
		return nil, err
	}
	items, err := decodeAll[model.Project](ctx, cur)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Project]{Items: items, Total: int(total)}, nil
}

func (r *ProjectMongo) ListByCompany(ctx context.Context, companyID string) ([]model.Project, error) {
	cur, err := r.coll.Find(ctx, bson.M{"company_id": companyID}, options.Find().SetSort(projectSort))
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Project](ctx, cur)
}

func (r *ProjectMongo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.coll, slug, excludeID)
}

func (r *ProjectMongo) Update(ctx context.Context, p *model.Project) error {
	set := bson.M{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"status":      p.Status,
		"updated_at":  p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if p.CompanyID != nil {
		set["company_id"] = *p.CompanyID
	} else {
		update["$unset"] = bson.M{"company_id": ""}
	}
	res, err := r.coll.UpdateByID(ctx, p.ID, update)
	if err != nil {
		return mapErr(err)
	}
	return requireMatched(res)
}

func (r *ProjectMongo) AttachDocument(ctx context.Context, projectID, docID string) error {
	res, err := r.coll.UpdateByID(ctx, projectID, bson.M{
		"$addToSet": bson.M{"document_ids": docID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	return requireMatched(res)
}

func (r *ProjectMongo) DetachDocument(ctx context.Context, projectID, docID string) error {
	res, err := r.coll.UpdateByID(ctx, projectID, bson.M{
		"$pull": bson.M{"document_ids": docID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	return requireMatched(res)
}

func (r *ProjectMongo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
