package inmemdb

import (
	"context"
	"sort"

	"github.com/makonzi/uwepo/core/inventory"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

func (repo *inventoryRepository) CreateItem(ctx context.Context, item *inventory.Item) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = repo.db.nextID()
	clone := *item
	repo.db.items[item.ID] = &clone
	return nil
}

func (repo *inventoryRepository) GetItemByID(ctx context.Context, id string) (inventory.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.items[id]; ok {
		return *item, nil
	}
	return inventory.Item{}, inventory.ErrItemNotFound
}

func (repo *inventoryRepository) QueryItemsByCampus(ctx context.Context, campusID string) ([]inventory.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]inventory.Item, 0)
	for _, item := range repo.db.items {
		if item.CampusID == campusID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (repo *inventoryRepository) SetItemQuantity(ctx context.Context, id string, quantity int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item, ok := repo.db.items[id]
	if !ok {
		return inventory.ErrItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (repo *inventoryRepository) DeleteItem(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.items[id]; !ok {
		return inventory.ErrItemNotFound
	}
	delete(repo.db.items, id)
	return nil
}

func (repo *inventoryRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item, ok := repo.db.items[id]
	if !ok || item.Quantity < quantity {
		return false, nil
	}
	item.Quantity -= quantity
	return true, nil
}

func (repo *inventoryRepository) CreateRequest(ctx context.Context, req *inventory.Request) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req.ID = repo.db.nextID()
	clone := *req
	repo.db.itemRequests[req.ID] = &clone
	return nil
}

func (repo *inventoryRepository) GetRequestByID(ctx context.Context, id string) (inventory.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.itemRequests[id]; ok {
		return *req, nil
	}
	return inventory.Request{}, inventory.ErrRequestNotFound
}

func (repo *inventoryRepository) FilterRequests(ctx context.Context, employeeID, campusID string, status inventory.RequestStatus) ([]inventory.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	requests := make([]inventory.Request, 0)
	for _, req := range repo.db.itemRequests {
		if employeeID != "" && req.EmployeeID != employeeID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		if campusID != "" {
			item, ok := repo.db.items[req.ItemID]
			if !ok || item.CampusID != campusID {
				continue
			}
		}
		requests = append(requests, *req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (repo *inventoryRepository) SettleRequest(ctx context.Context, id string, status inventory.RequestStatus) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req, ok := repo.db.itemRequests[id]
	if !ok || req.Status != inventory.StatusPending {
		return inventory.ErrAlreadySettled
	}
	req.Status = status
	return nil
}
