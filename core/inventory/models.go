package inventory

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/makonzi/uwepo/core"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// Item is a stock line in a campus inventory.
type Item struct {
	ID       string `json:"item_id" bson:"_id,omitempty"`
	Name     string `json:"name" bson:"name"`
	Quantity int    `json:"quantity" bson:"quantity"`
	Category string `json:"category" bson:"category"`
	CampusID string `json:"campus_id" bson:"campus_id"`
}

// Request is an employee's ask for stock.
type Request struct {
	ID                string        `json:"request_id" bson:"_id,omitempty"`
	EmployeeID        string        `json:"requested_by" bson:"employee_id"`
	ItemID            string        `json:"item_id" bson:"item_id"`
	ItemName          string        `json:"item_name" bson:"item_name"`
	RequestedQuantity int           `json:"requested_quantity" bson:"requested_quantity"`
	Reason            string        `json:"reason" bson:"reason"`
	Status            RequestStatus `json:"status" bson:"status"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"` // UTC
}

// NewItem contains information needed to add a stock line.
type NewItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
	Category string `json:"category" validate:"required"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Category = core.CleanString(ni.Category)
	return validate.Struct(ni)
}

// NewRequest contains information needed to request stock.
type NewRequest struct {
	ItemID            string `json:"item_id" validate:"required"`
	RequestedQuantity int    `json:"requested_quantity" validate:"min=1"`
	Reason            string `json:"reason" validate:"required"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Reason = core.CleanString(nr.Reason)
	return validate.Struct(nr)
}
