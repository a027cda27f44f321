package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/announcement"
)

type announcementRepository struct {
	coll *mongo.Collection
}

func NewAnnouncementRepository(db *mongo.Database) announcement.Repository {
	return &announcementRepository{coll: db.Collection(announcementsCollection)}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann *announcement.Announcement) error {
	ann.ID = newID()
	_, err := repo.coll.InsertOne(ctx, ann)
	return errors.Wrap(err, "inserting announcement")
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	var ann announcement.Announcement
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ann); err != nil {
		if err == mongo.ErrNoDocuments {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, campusID string, since time.Time) ([]announcement.Announcement, error) {
	query := bson.M{
		"$or": []bson.M{
			{"level": announcement.LevelUniversity},
			{"level": announcement.LevelCampus, "campus_id": campusID},
		},
	}
	if !since.IsZero() {
		query["posted_at"] = bson.M{"$gte": since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	announcements := make([]announcement.Announcement, 0)
	if err = cur.All(ctx, &announcements); err != nil {
		return nil, errors.Wrap(err, "decoding announcements")
	}
	return announcements, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if res.DeletedCount == 0 {
		return announcement.ErrNotFound
	}
	return nil
}
