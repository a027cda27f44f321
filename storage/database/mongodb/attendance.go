package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/attendance"
)

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) attendance.Repository {
	return &attendanceRepository{coll: db.Collection(attendanceCollection)}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = newID()
	if _, err := repo.coll.InsertOne(ctx, rec); err != nil {
		if isDup(err) {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Record{}, errors.Wrap(err, "inserting record")
	}
	return rec, nil
}

func (repo *attendanceRepository) getOne(ctx context.Context, filter bson.M) (attendance.Record, error) {
	var rec attendance.Record
	if err := repo.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting record")
	}
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, employeeID, date string) (attendance.Record, error) {
	return repo.getOne(ctx, bson.M{"employee_id": employeeID, "date": date})
}

func (repo *attendanceRepository) GetOpenRecord(ctx context.Context, employeeID, date string) (attendance.Record, error) {
	return repo.getOne(ctx, bson.M{
		"employee_id": employeeID,
		"date":        date,
		"punch_out":   bson.M{"$exists": false},
	})
}

func (repo *attendanceRepository) CompleteRecord(ctx context.Context, id string, out time.Time, campusID string, totalHours float64) (attendance.Record, error) {
	// The punch_out guard in the filter makes concurrent punch-outs lose
	// cleanly instead of overwriting each other.
	filter := bson.M{"_id": id, "punch_out": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"punch_out":           out,
			"punch_out_campus_id": campusID,
			"total_hours":         totalHours,
		},
		"$unset": bson.M{"exit_time": ""},
	}
	res := repo.coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After))

	var rec attendance.Record
	if err := res.Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return attendance.Record{}, attendance.ErrAlreadyPunchedOut
		}
		return attendance.Record{}, errors.Wrap(err, "completing record")
	}
	return rec, nil
}

func (repo *attendanceRepository) MarkExit(ctx context.Context, id string, t time.Time) error {
	_, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"exit_time": t},
	})
	return errors.Wrap(err, "marking exit")
}

func (repo *attendanceRepository) AccumulateOutOfBounds(ctx context.Context, id string, minutes float64, exitTime time.Time) error {
	// $inc keeps concurrent pings additive; the accumulator only grows.
	_, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"total_out_of_bounds_time": minutes},
		"$set": bson.M{"exit_time": exitTime},
	})
	return errors.Wrap(err, "accumulating out-of-bounds time")
}

func (repo *attendanceRepository) ClearExit(ctx context.Context, id string) error {
	_, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"exit_time": ""},
	})
	return errors.Wrap(err, "clearing exit")
}

func (repo *attendanceRepository) query(ctx context.Context, filter bson.M) ([]attendance.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "employee_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	records := make([]attendance.Record, 0)
	if err = cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decoding records")
	}
	return records, nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	query := bson.M{}
	if filter.EmployeeID != "" {
		query["employee_id"] = filter.EmployeeID
	}
	if filter.CampusID != "" {
		query["punch_in_campus_id"] = filter.CampusID
	}
	if dateRange := rangeQuery(filter.DateFrom, filter.DateTo); dateRange != nil {
		query["date"] = dateRange
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return repo.query(ctx, query)
}

func (repo *attendanceRepository) FilterViolations(ctx context.Context, filter attendance.ViolationFilter) ([]attendance.Record, error) {
	query := bson.M{
		"total_out_of_bounds_time": bson.M{"$gt": filter.Threshold},
	}
	if filter.CampusID != "" {
		query["punch_in_campus_id"] = filter.CampusID
	}
	if dateRange := rangeQuery(filter.DateFrom, filter.DateTo); dateRange != nil {
		query["date"] = dateRange
	}
	return repo.query(ctx, query)
}

func (repo *attendanceRepository) CountViolations(ctx context.Context, employeeID string, threshold float64) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, bson.M{
		"employee_id":              employeeID,
		"total_out_of_bounds_time": bson.M{"$gt": threshold},
	})
	if err != nil {
		return 0, errors.Wrap(err, "counting violations")
	}
	return int(n), nil
}

func (repo *attendanceRepository) UpsertLegacyRecord(ctx context.Context, rec attendance.Record) (bool, error) {
	rec.ID = newID()
	_, err := repo.coll.InsertOne(ctx, rec)
	if err != nil {
		if isDup(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "inserting legacy record")
	}
	return true, nil
}

// rangeQuery builds a lexicographic day-window match; dates are stored as
// YYYY-MM-DD strings so string comparison orders correctly.
func rangeQuery(from, to string) bson.M {
	q := bson.M{}
	if from != "" {
		q["$gte"] = from
	}
	if to != "" {
		q["$lte"] = to
	}
	if len(q) == 0 {
		return nil
	}
	return q
}
