package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is how record dates are keyed in the store (one record per
// employee per calendar day).
const DateLayout = "2006-01-02"

func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
)

// Record is one employee-day attendance document. It is created on punch-in,
// mutated by location pings and punch-out, and never deleted.
type Record struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	EmployeeID   string `json:"employee_id" bson:"employee_id"`
	EmployeeName string `json:"name" bson:"employee_name"`
	Date         string `json:"date" bson:"date"`

	PunchIn          time.Time  `json:"punch_in" bson:"punch_in"`
	PunchOut         *time.Time `json:"punch_out,omitempty" bson:"punch_out,omitempty"`
	PunchInCampusID  string     `json:"punch_in_campus_id,omitempty" bson:"punch_in_campus_id,omitempty"`
	PunchOutCampusID string     `json:"punch_out_campus_id,omitempty" bson:"punch_out_campus_id,omitempty"`
	TotalHours       float64    `json:"total_hours" bson:"total_hours"`

	// TotalOutOfBoundsTime accumulates minutes spent outside the punch-in
	// campus boundary. It only ever grows within a record.
	TotalOutOfBoundsTime float64    `json:"total_out_of_bounds_time" bson:"total_out_of_bounds_time"`
	ExitTime             *time.Time `json:"-" bson:"exit_time,omitempty"`

	Status   Status     `json:"status" bson:"status"`
	SyncedAt *time.Time `json:"synced_at,omitempty" bson:"synced_at,omitempty"`
}

// Open reports whether the record still has an active session.
func (r Record) Open() bool {
	return !r.PunchIn.IsZero() && r.PunchOut == nil
}

// Coordinates is a tracked device position.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

func (c *Coordinates) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

// Violation is the reporting projection for out-of-bounds offenders.
type Violation struct {
	EmployeeID           string  `json:"employee_id"`
	Name                 string  `json:"name"`
	TotalOutOfBoundsTime float64 `json:"total_out_of_bounds_time"`
}

// ViolationFilter selects records whose accumulator exceeds Threshold
// (minutes) within the [DateFrom, DateTo] day window, optionally scoped to
// the punch-in campus.
type ViolationFilter struct {
	DateFrom  string
	DateTo    string
	CampusID  string
	Threshold float64
}

// QueryFilter narrows record listings. Empty fields are ignored.
type QueryFilter struct {
	EmployeeID string
	CampusID   string
	DateFrom   string
	DateTo     string
	Status     Status
}

// Period is a reporting window anchored on today.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Range resolves the period to inclusive [from, to] day strings.
// Weekly runs from Monday of the current week; monthly from the 1st.
func (p Period) Range(today time.Time) (from, to string) {
	today = today.UTC()
	switch p {
	case PeriodDaily:
		return DateOf(today), DateOf(today)
	case PeriodWeekly:
		return DateOf(weekStart(today)), DateOf(today)
	default:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateOf(first), DateOf(today)
	}
}

func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// LegacyPunch is a row pulled from the EPUSH biometric machine database.
type LegacyPunch struct {
	EmployeeID string
	PunchIn    time.Time
	PunchOut   *time.Time
	Status     string
	Date       string
}
