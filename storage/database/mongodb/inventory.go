package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makonzi/uwepo/core/inventory"
)

type inventoryRepository struct {
	items    *mongo.Collection
	requests *mongo.Collection
}

func NewInventoryRepository(db *mongo.Database) inventory.Repository {
	return &inventoryRepository{
		items:    db.Collection(itemsCollection),
		requests: db.Collection(itemRequestsCollection),
	}
}

func (repo *inventoryRepository) CreateItem(ctx context.Context, item *inventory.Item) error {
	item.ID = newID()
	_, err := repo.items.InsertOne(ctx, item)
	return errors.Wrap(err, "inserting item")
}

func (repo *inventoryRepository) GetItemByID(ctx context.Context, id string) (inventory.Item, error) {
	var item inventory.Item
	if err := repo.items.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return inventory.Item{}, inventory.ErrItemNotFound
		}
		return inventory.Item{}, errors.Wrap(err, "getting item")
	}
	return item, nil
}

func (repo *inventoryRepository) QueryItemsByCampus(ctx context.Context, campusID string) ([]inventory.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := repo.items.Find(ctx, bson.M{"campus_id": campusID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	items := make([]inventory.Item, 0)
	if err = cur.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decoding items")
	}
	return items, nil
}

func (repo *inventoryRepository) SetItemQuantity(ctx context.Context, id string, quantity int) error {
	res, err := repo.items.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"quantity": quantity},
	})
	if err != nil {
		return errors.Wrap(err, "updating item quantity")
	}
	if res.MatchedCount == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

func (repo *inventoryRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := repo.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting item")
	}
	if res.DeletedCount == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

func (repo *inventoryRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	// The quantity guard in the filter keeps concurrent approvals from
	// driving stock negative.
	res, err := repo.items.UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"quantity": -quantity}},
	)
	if err != nil {
		return false, errors.Wrap(err, "decrementing stock")
	}
	return res.MatchedCount > 0, nil
}

func (repo *inventoryRepository) CreateRequest(ctx context.Context, req *inventory.Request) error {
	req.ID = newID()
	_, err := repo.requests.InsertOne(ctx, req)
	return errors.Wrap(err, "inserting inventory request")
}

func (repo *inventoryRepository) GetRequestByID(ctx context.Context, id string) (inventory.Request, error) {
	var req inventory.Request
	if err := repo.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return inventory.Request{}, inventory.ErrRequestNotFound
		}
		return inventory.Request{}, errors.Wrap(err, "getting inventory request")
	}
	return req, nil
}

func (repo *inventoryRepository) FilterRequests(ctx context.Context, employeeID, campusID string, status inventory.RequestStatus) ([]inventory.Request, error) {
	query := bson.M{}
	if employeeID != "" {
		query["employee_id"] = employeeID
	}
	if status != "" {
		query["status"] = status
	}
	if campusID != "" {
		// Requests do not carry a campus; scope through the campus's items.
		itemIDs, err := repo.itemIDsByCampus(ctx, campusID)
		if err != nil {
			return nil, err
		}
		query["item_id"] = bson.M{"$in": itemIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.requests.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying inventory requests")
	}
	requests := make([]inventory.Request, 0)
	if err = cur.All(ctx, &requests); err != nil {
		return nil, errors.Wrap(err, "decoding inventory requests")
	}
	return requests, nil
}

func (repo *inventoryRepository) SettleRequest(ctx context.Context, id string, status inventory.RequestStatus) error {
	res, err := repo.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": inventory.StatusPending},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return errors.Wrap(err, "settling inventory request")
	}
	if res.MatchedCount == 0 {
		return inventory.ErrAlreadySettled
	}
	return nil
}

func (repo *inventoryRepository) itemIDsByCampus(ctx context.Context, campusID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := repo.items.Find(ctx, bson.M{"campus_id": campusID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying campus items")
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding campus items")
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}
