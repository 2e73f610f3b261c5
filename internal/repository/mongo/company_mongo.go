package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	mongodb "go.mongodb.org/mongo-driver/mongo"

	"portal/internal/model"
	"portal/internal/repository"
)

// CompanyMongo is a MongoDB implementation of repository.CompanyRepository.
type CompanyMongo struct {
	coll *mongodb.Collection
}

func NewCompanyMongo(db *mongodb.Database) *CompanyMongo {
	return &CompanyMongo{coll: db.Collection(CompaniesCollection)}
}

var _ repository.CompanyRepository = (*CompanyMongo)(nil)

func (r *CompanyMongo) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	out := *c
	if _, err := r.coll.InsertOne(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *CompanyMongo) FindByID(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CompanyMongo) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	sort := bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.coll.Find(ctx, bson.M{}, pageOptions(pq, sort))
	if err != nil {
		return nil, err
	}
	items, err := decodeAll[model.Company](ctx, cur)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Company]{Items: items, Total: int(total)}, nil
}

func (r *CompanyMongo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.coll, slug, excludeID)
}

func (r *CompanyMongo) Update(ctx context.Context, c *model.Company) error {
	res, err := r.coll.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"website":     c.Website,
		"updated_at":  c.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err)
	}
	return requireMatched(res)
}

func (r *CompanyMongo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
