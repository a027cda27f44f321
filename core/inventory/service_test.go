package inventory_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/inventory"
	inmemdb "github.com/makonzi/uwepo/storage/database/inmem"
)

func newTestService() *inventory.Service {
	return inventory.NewService(inmemdb.NewInventoryRepository(inmemdb.Open()))
}

func addItem(t *testing.T, svc *inventory.Service, name string, qty int, campusID string) inventory.Item {
	t.Helper()
	item, err := svc.AddItem(context.Background(), inventory.NewItem{
		Name:     name,
		Quantity: qty,
		Category: "stationery",
	}, campusID)
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	return item
}

func request(t *testing.T, svc *inventory.Service, itemID string, qty int) inventory.Request {
	t.Helper()
	req, err := svc.Request(context.Background(), inventory.NewRequest{
		ItemID:            itemID,
		RequestedQuantity: qty,
		Reason:            "office supplies",
	}, "emp-abc")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	return req
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	item := addItem(t, svc, "whiteboard markers", 40, "c1")
	addItem(t, svc, "projector", 2, "c2")

	t.Run("listing is campus scoped", func(t *testing.T) {
		items, err := svc.ListItems(ctx, "c1")
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("len(items) = %d; want 1", len(items))
		}
	})

	t.Run("set quantity", func(t *testing.T) {
		updated, err := svc.SetQuantity(ctx, item.ID, "c1", 25)
		if err != nil {
			t.Fatalf("SetQuantity() failed: %v", err)
		}
		if updated.Quantity != 25 {
			t.Errorf("Quantity = %d; want 25", updated.Quantity)
		}
	})

	t.Run("wrong campus cannot touch the item", func(t *testing.T) {
		if _, err := svc.SetQuantity(ctx, item.ID, "c2", 0); err != inventory.ErrWrongCampus {
			t.Errorf("err = %v; want ErrWrongCampus", err)
		}
		if err := svc.DeleteItem(ctx, item.ID, "c2"); err != inventory.ErrWrongCampus {
			t.Errorf("err = %v; want ErrWrongCampus", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.DeleteItem(ctx, item.ID, "c1"); err != nil {
			t.Fatalf("DeleteItem() failed: %v", err)
		}
		if _, err := svc.SetQuantity(ctx, item.ID, "c1", 1); err != inventory.ErrItemNotFound {
			t.Errorf("err = %v; want ErrItemNotFound", err)
		}
	})
}

func TestRequest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	item := addItem(t, svc, "laptops", 3, "c1")

	t.Run("records the ask without reserving stock", func(t *testing.T) {
		req := request(t, svc, item.ID, 2)
		if req.Status != inventory.StatusPending {
			t.Errorf("Status = %v; want %v", req.Status, inventory.StatusPending)
		}
		if req.ItemName != "laptops" {
			t.Errorf("ItemName = %q; want laptops", req.ItemName)
		}

		items, _ := svc.ListItems(ctx, "c1")
		if items[0].Quantity != 3 {
			t.Errorf("Quantity = %d; stock must not move on request", items[0].Quantity)
		}
	})

	t.Run("more than in stock is refused upfront", func(t *testing.T) {
		if _, err := svc.Request(ctx, inventory.NewRequest{
			ItemID:            item.ID,
			RequestedQuantity: 4,
			Reason:            "new lab",
		}, "emp-abc"); err != inventory.ErrOutOfStock {
			t.Errorf("err = %v; want ErrOutOfStock", err)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		if _, err := svc.Request(ctx, inventory.NewRequest{
			ItemID:            "nope",
			RequestedQuantity: 1,
			Reason:            "test",
		}, "emp-abc"); err != inventory.ErrItemNotFound {
			t.Errorf("err = %v; want ErrItemNotFound", err)
		}
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock", func(t *testing.T) {
		svc := newTestService()
		item := addItem(t, svc, "chairs", 10, "c1")
		req := request(t, svc, item.ID, 4)

		settled, err := svc.Approve(ctx, req.ID, "c1")
		if err != nil {
			t.Fatalf("Approve() failed: %v", err)
		}
		if settled.Status != inventory.StatusApproved {
			t.Errorf("Status = %v; want %v", settled.Status, inventory.StatusApproved)
		}

		items, _ := svc.ListItems(ctx, "c1")
		if items[0].Quantity != 6 {
			t.Errorf("Quantity = %d; want 6", items[0].Quantity)
		}
	})

	t.Run("cannot oversell across requests", func(t *testing.T) {
		svc := newTestService()
		item := addItem(t, svc, "chairs", 10, "c1")
		first := request(t, svc, item.ID, 8)
		second := request(t, svc, item.ID, 8)

		if _, err := svc.Approve(ctx, first.ID, "c1"); err != nil {
			t.Fatalf("Approve() failed: %v", err)
		}
		if _, err := svc.Approve(ctx, second.ID, "c1"); errors.Cause(err) != inventory.ErrOutOfStock {
			t.Errorf("err = %v; want ErrOutOfStock", err)
		}

		items, _ := svc.ListItems(ctx, "c1")
		if items[0].Quantity != 2 {
			t.Errorf("Quantity = %d; want 2", items[0].Quantity)
		}
	})

	t.Run("settling twice fails", func(t *testing.T) {
		svc := newTestService()
		item := addItem(t, svc, "chairs", 10, "c1")
		req := request(t, svc, item.ID, 1)

		if _, err := svc.Approve(ctx, req.ID, "c1"); err != nil {
			t.Fatalf("Approve() failed: %v", err)
		}
		if _, err := svc.Reject(ctx, req.ID, "c1"); err != inventory.ErrAlreadySettled {
			t.Errorf("err = %v; want ErrAlreadySettled", err)
		}
	})

	t.Run("wrong campus admin is refused", func(t *testing.T) {
		svc := newTestService()
		item := addItem(t, svc, "chairs", 10, "c1")
		req := request(t, svc, item.ID, 1)

		if _, err := svc.Approve(ctx, req.ID, "c2"); err != inventory.ErrWrongCampus {
			t.Errorf("err = %v; want ErrWrongCampus", err)
		}
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	item := addItem(t, svc, "desks", 5, "c1")
	req := request(t, svc, item.ID, 5)

	settled, err := svc.Reject(ctx, req.ID, "c1")
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if settled.Status != inventory.StatusRejected {
		t.Errorf("Status = %v; want %v", settled.Status, inventory.StatusRejected)
	}

	// stock untouched
	items, _ := svc.ListItems(ctx, "c1")
	if items[0].Quantity != 5 {
		t.Errorf("Quantity = %d; want 5", items[0].Quantity)
	}
}

func TestPendingForCampus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	north := addItem(t, svc, "chairs", 10, "c1")
	south := addItem(t, svc, "chairs", 10, "c2")
	request(t, svc, north.ID, 1)
	request(t, svc, south.ID, 1)

	pending, err := svc.PendingForCampus(ctx, "c1")
	if err != nil {
		t.Fatalf("PendingForCampus() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("len(pending) = %d; want 1", len(pending))
	}
	if len(pending) > 0 && pending[0].ItemID != north.ID {
		t.Errorf("ItemID = %v; want %v", pending[0].ItemID, north.ID)
	}
}
