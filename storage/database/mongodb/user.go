package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		if isDup(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getOne(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.coll.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"email": email})
}

func (repo *userRepository) GetUserByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"employee_id": employeeID})
}

func (repo *userRepository) query(ctx context.Context, filter bson.M) ([]user.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	cur, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := bson.M{}
	if filter.CampusID != "" {
		query["campus_id"] = filter.CampusID
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}
	return repo.query(ctx, query)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) updateByEmail(ctx context.Context, email string, update bson.M) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetUserOTP(ctx context.Context, email, secret string, expires time.Time) error {
	return repo.updateByEmail(ctx, email, bson.M{
		"$set": bson.M{"otp_secret": secret, "otp_expires": expires},
	})
}

func (repo *userRepository) ActivateUser(ctx context.Context, email string) error {
	return repo.updateByEmail(ctx, email, bson.M{
		"$set":   bson.M{"is_active": true},
		"$unset": bson.M{"otp_secret": "", "otp_expires": ""},
	})
}

func (repo *userRepository) ClearUserOTP(ctx context.Context, email string) error {
	return repo.updateByEmail(ctx, email, bson.M{
		"$unset": bson.M{"otp_secret": "", "otp_expires": ""},
	})
}

func (repo *userRepository) SetUserPassword(ctx context.Context, email string, hash []byte) error {
	return repo.updateByEmail(ctx, email, bson.M{
		"$set": bson.M{"hashed_password": hash, "updated_at": time.Now().UTC()},
	})
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_login": t, "first_login": false},
	})
	if err != nil {
		return errors.Wrap(err, "updating last login")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) FlagRedNotice(ctx context.Context, id, reason string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"red_notice_issued": true, "red_notice_reason": reason},
	})
	if err != nil {
		return errors.Wrap(err, "flagging red notice")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
