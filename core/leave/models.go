package leave

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/makonzi/uwepo/core"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

type Type string

const (
	TypeCasual  Type = "casual"
	TypeSick    Type = "sick"
	TypeSpecial Type = "special"
)

// Request is a leave application awaiting (or past) an admin decision.
type Request struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	EmployeeID      string    `json:"employee_id" bson:"employee_id"`
	EmployeeName    string    `json:"name" bson:"employee_name"`
	CampusID        string    `json:"campus_id,omitempty" bson:"campus_id,omitempty"`
	Type            Type      `json:"leave_type" bson:"leave_type"`
	StartDate       string    `json:"start_date" bson:"start_date"`
	EndDate         string    `json:"end_date" bson:"end_date"`
	Reason          string    `json:"reason" bson:"reason"`
	Status          Status    `json:"status" bson:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	RequestedAt     time.Time `json:"requested_at" bson:"requested_at"` // UTC
}

// NewRequest contains information needed to apply for leave.
type NewRequest struct {
	Type      Type   `json:"leave_type" validate:"required,oneof=casual sick special"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Reason = core.CleanString(nr.Reason)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	start, err := time.Parse("2006-01-02", nr.StartDate)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "invalid date, use YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", nr.EndDate)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_date", Error: "invalid date, use YYYY-MM-DD"})
	}
	if end.Before(start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date is before start date"})
	}
	return nil
}

// Holiday is a gazetted (GH) or restricted (RH) holiday on the university
// calendar.
type Holiday struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Date string `json:"date" bson:"date"`
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"` // GH or RH
}

// CalendarEntry is one colored item on the combined holiday/leave calendar.
type CalendarEntry struct {
	Date    string `json:"date"`
	EndDate string `json:"end_date,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Status  Status `json:"status,omitempty"`
	Color   string `json:"color"`
}

// Balance mirrors the per-type leave counters held on the user profile.
type Balance struct {
	EmployeeID             string `json:"employee_id"`
	CasualLeavesRemaining  int    `json:"casual_leaves_remaining"`
	SickLeavesRemaining    int    `json:"sick_leaves_remaining"`
	SpecialLeavesRemaining int    `json:"special_leaves_remaining"`
	TotalLeavesRemaining   int    `json:"total_leaves_remaining"`
}
