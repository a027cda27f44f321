package inventory

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrRequestNotFound = errors.New("request not found")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrAlreadySettled  = errors.New("request already settled")
	ErrWrongCampus     = errors.New("item belongs to another campus")
)

var nowFunc = time.Now // mockable

// Repository abstracts item and request persistence.
type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItemByID(ctx context.Context, id string) (Item, error)
	QueryItemsByCampus(ctx context.Context, campusID string) ([]Item, error)
	SetItemQuantity(ctx context.Context, id string, quantity int) error
	DeleteItem(ctx context.Context, id string) error
	// DecrementStock subtracts quantity only when enough stock remains.
	// It reports whether the decrement was applied.
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)

	CreateRequest(ctx context.Context, req *Request) error
	GetRequestByID(ctx context.Context, id string) (Request, error)
	FilterRequests(ctx context.Context, employeeID, campusID string, status RequestStatus) ([]Request, error)
	SettleRequest(ctx context.Context, id string, status RequestStatus) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddItem adds a stock line to the campus inventory.
func (svc *Service) AddItem(ctx context.Context, ni NewItem, campusID string) (Item, error) {
	item := Item{
		Name:     ni.Name,
		Quantity: ni.Quantity,
		Category: ni.Category,
		CampusID: campusID,
	}
	if err := svc.repo.CreateItem(ctx, &item); err != nil {
		return Item{}, errors.Wrap(err, "creating item")
	}
	return item, nil
}

func (svc *Service) ListItems(ctx context.Context, campusID string) ([]Item, error) {
	return svc.repo.QueryItemsByCampus(ctx, campusID)
}

// SetQuantity replaces an item's stock level.
func (svc *Service) SetQuantity(ctx context.Context, itemID, campusID string, quantity int) (Item, error) {
	item, err := svc.checkItemCampus(ctx, itemID, campusID)
	if err != nil {
		return Item{}, err
	}
	if err = svc.repo.SetItemQuantity(ctx, itemID, quantity); err != nil {
		return Item{}, errors.Wrap(err, "updating quantity")
	}
	item.Quantity = quantity
	return item, nil
}

func (svc *Service) DeleteItem(ctx context.Context, itemID, campusID string) error {
	if _, err := svc.checkItemCampus(ctx, itemID, campusID); err != nil {
		return err
	}
	return svc.repo.DeleteItem(ctx, itemID)
}

// Request records an employee's ask against available stock.
// Stock is not reserved until the request is approved.
func (svc *Service) Request(ctx context.Context, nr NewRequest, employeeID string) (Request, error) {
	item, err := svc.repo.GetItemByID(ctx, nr.ItemID)
	if err != nil {
		return Request{}, err
	}
	if item.Quantity < nr.RequestedQuantity {
		return Request{}, ErrOutOfStock
	}

	req := Request{
		EmployeeID:        employeeID,
		ItemID:            item.ID,
		ItemName:          item.Name,
		RequestedQuantity: nr.RequestedQuantity,
		Reason:            nr.Reason,
		Status:            StatusPending,
		CreatedAt:         nowFunc().UTC(),
	}
	if err = svc.repo.CreateRequest(ctx, &req); err != nil {
		return Request{}, errors.Wrap(err, "creating request")
	}
	return req, nil
}

// MyRequests lists the employee's own requests, all statuses.
func (svc *Service) MyRequests(ctx context.Context, employeeID string) ([]Request, error) {
	return svc.repo.FilterRequests(ctx, employeeID, "", "")
}

// PendingForCampus lists pending requests against a campus's items.
func (svc *Service) PendingForCampus(ctx context.Context, campusID string) ([]Request, error) {
	return svc.repo.FilterRequests(ctx, "", campusID, StatusPending)
}

// Approve settles a pending request and decrements the item's stock.
// The decrement is conditional so concurrent approvals cannot oversell.
func (svc *Service) Approve(ctx context.Context, requestID, campusID string) (Request, error) {
	req, err := svc.checkRequest(ctx, requestID, campusID)
	if err != nil {
		return Request{}, err
	}

	ok, err := svc.repo.DecrementStock(ctx, req.ItemID, req.RequestedQuantity)
	if err != nil {
		return Request{}, errors.Wrap(err, "decrementing stock")
	}
	if !ok {
		return Request{}, ErrOutOfStock
	}

	if err = svc.repo.SettleRequest(ctx, requestID, StatusApproved); err != nil {
		return Request{}, errors.Wrap(err, "settling request")
	}
	req.Status = StatusApproved
	return req, nil
}

// Reject settles a pending request without touching stock.
func (svc *Service) Reject(ctx context.Context, requestID, campusID string) (Request, error) {
	req, err := svc.checkRequest(ctx, requestID, campusID)
	if err != nil {
		return Request{}, err
	}
	if err = svc.repo.SettleRequest(ctx, requestID, StatusRejected); err != nil {
		return Request{}, errors.Wrap(err, "settling request")
	}
	req.Status = StatusRejected
	return req, nil
}

func (svc *Service) checkItemCampus(ctx context.Context, itemID, campusID string) (Item, error) {
	item, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if campusID != "" && item.CampusID != campusID {
		return Item{}, ErrWrongCampus
	}
	return item, nil
}

func (svc *Service) checkRequest(ctx context.Context, requestID, campusID string) (Request, error) {
	req, err := svc.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, ErrAlreadySettled
	}
	if _, err = svc.checkItemCampus(ctx, req.ItemID, campusID); err != nil {
		return Request{}, err
	}
	return req, nil
}
