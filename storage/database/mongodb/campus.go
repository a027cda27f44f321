package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/campus"
)

type campusRepository struct {
	coll *mongo.Collection
}

func NewCampusRepository(db *mongo.Database) campus.Repository {
	return &campusRepository{coll: db.Collection(campusesCollection)}
}

func (repo *campusRepository) CreateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error) {
	c.ID = newID()
	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		return campus.Campus{}, errors.Wrap(err, "inserting campus")
	}
	return c, nil
}

func (repo *campusRepository) GetCampusByID(ctx context.Context, id string) (campus.Campus, error) {
	var c campus.Campus
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return campus.Campus{}, campus.ErrNotFound
		}
		return campus.Campus{}, errors.Wrap(err, "getting campus")
	}
	return c, nil
}

func (repo *campusRepository) QueryAllCampuses(ctx context.Context) ([]campus.Campus, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying campuses")
	}
	campuses := make([]campus.Campus, 0)
	if err = cur.All(ctx, &campuses); err != nil {
		return nil, errors.Wrap(err, "decoding campuses")
	}
	return campuses, nil
}
