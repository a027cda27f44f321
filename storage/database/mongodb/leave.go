package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/leave"
)

type leaveRepository struct {
	coll     *mongo.Collection
	holidays *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) leave.Repository {
	return &leaveRepository{
		coll:     db.Collection(leavesCollection),
		holidays: db.Collection(holidaysCollection),
	}
}

func (repo *leaveRepository) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	req.ID = newID()
	if _, err := repo.coll.InsertOne(ctx, req); err != nil {
		return leave.Request{}, errors.Wrap(err, "inserting leave request")
	}
	return req, nil
}

func (repo *leaveRepository) GetRequestByID(ctx context.Context, id string) (leave.Request, error) {
	var req leave.Request
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return leave.Request{}, leave.ErrNotFound
		}
		return leave.Request{}, errors.Wrap(err, "getting leave request")
	}
	return req, nil
}

func (repo *leaveRepository) FilterRequests(ctx context.Context, employeeID, campusID string, status leave.Status) ([]leave.Request, error) {
	query := bson.M{}
	if employeeID != "" {
		query["employee_id"] = employeeID
	}
	if campusID != "" {
		query["campus_id"] = campusID
	}
	if status != "" {
		query["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying leave requests")
	}
	requests := make([]leave.Request, 0)
	if err = cur.All(ctx, &requests); err != nil {
		return nil, errors.Wrap(err, "decoding leave requests")
	}
	return requests, nil
}

func (repo *leaveRepository) SettleRequest(ctx context.Context, id string, status leave.Status, rejectionReason string) (leave.Request, error) {
	// Only a Pending request can be settled; a second settle finds nothing.
	filter := bson.M{"_id": id, "status": leave.StatusPending}
	set := bson.M{"status": status}
	if rejectionReason != "" {
		set["rejection_reason"] = rejectionReason
	}
	res := repo.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var req leave.Request
	if err := res.Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return leave.Request{}, leave.ErrAlreadySettled
		}
		return leave.Request{}, errors.Wrap(err, "settling leave request")
	}
	return req, nil
}

func (repo *leaveRepository) QueryAllHolidays(ctx context.Context) ([]leave.Holiday, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := repo.holidays.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying holidays")
	}
	holidays := make([]leave.Holiday, 0)
	if err = cur.All(ctx, &holidays); err != nil {
		return nil, errors.Wrap(err, "decoding holidays")
	}
	return holidays, nil
}
