package leave

import (
	"context"
	"errors"
	"time"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("leave request not found")
	ErrWrongCampus    = errors.New("leave request belongs to another campus")
	ErrAlreadySettled = errors.New("leave request is already settled")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequestByID(ctx context.Context, id string) (Request, error)
		// FilterRequests matches on any non-empty fields of the example.
		FilterRequests(ctx context.Context, employeeID, campusID string, status Status) ([]Request, error)
		// SettleRequest transitions a Pending request; settling twice fails
		// with ErrAlreadySettled.
		SettleRequest(ctx context.Context, id string, status Status, rejectionReason string) (Request, error)
		QueryAllHolidays(ctx context.Context) ([]Holiday, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Apply files a new leave request for the user.
func (svc *Service) Apply(ctx context.Context, usr user.User, nr NewRequest) (Request, error) {
	req := Request{
		EmployeeID:   usr.EmployeeID,
		EmployeeName: usr.FullName,
		CampusID:     usr.CampusID,
		Type:         nr.Type,
		StartDate:    nr.StartDate,
		EndDate:      nr.EndDate,
		Reason:       nr.Reason,
		Status:       StatusPending,
		RequestedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateRequest(ctx, req)
}

// ListMine returns the user's own requests, optionally filtered by status.
func (svc *Service) ListMine(ctx context.Context, usr user.User, status Status) ([]Request, error) {
	return svc.repo.FilterRequests(ctx, usr.EmployeeID, "", status)
}

// PendingForCampus returns requests awaiting a decision on a campus.
func (svc *Service) PendingForCampus(ctx context.Context, campusID string) ([]Request, error) {
	return svc.repo.FilterRequests(ctx, "", campusID, StatusPending)
}

// Approve settles a pending request. Admins may only decide requests on
// their own campus; super admins pass an empty campusID and skip the check.
func (svc *Service) Approve(ctx context.Context, id, campusID string) (Request, error) {
	if err := svc.checkCampus(ctx, id, campusID); err != nil {
		return Request{}, err
	}
	return svc.repo.SettleRequest(ctx, id, StatusApproved, "")
}

// Reject settles a pending request with a reason.
func (svc *Service) Reject(ctx context.Context, id, campusID, reason string) (Request, error) {
	if err := svc.checkCampus(ctx, id, campusID); err != nil {
		return Request{}, err
	}
	return svc.repo.SettleRequest(ctx, id, StatusRejected, core.CleanString(reason))
}

func (svc *Service) checkCampus(ctx context.Context, id, campusID string) error {
	if campusID == "" {
		return nil
	}
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if req.CampusID != campusID {
		return ErrWrongCampus
	}
	return nil
}

// BalanceFor projects the leave counters off the user profile.
func (svc *Service) BalanceFor(usr user.User) Balance {
	return Balance{
		EmployeeID:             usr.EmployeeID,
		CasualLeavesRemaining:  usr.CasualLeavesRemaining,
		SickLeavesRemaining:    usr.SickLeavesRemaining,
		SpecialLeavesRemaining: usr.SpecialLeavesRemaining,
		TotalLeavesRemaining:   usr.CasualLeavesRemaining + usr.SickLeavesRemaining + usr.SpecialLeavesRemaining,
	}
}

// Calendar merges the holiday calendar with the user's own leave requests.
func (svc *Service) Calendar(ctx context.Context, usr user.User) ([]CalendarEntry, error) {
	holidays, err := svc.repo.QueryAllHolidays(ctx)
	if err != nil {
		return nil, err
	}
	leaves, err := svc.repo.FilterRequests(ctx, usr.EmployeeID, "", "")
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(holidays)+len(leaves))
	for _, h := range holidays {
		color := "purple"
		if h.Type == "GH" {
			color = "blue"
		}
		entries = append(entries, CalendarEntry{
			Date:  h.Date,
			Name:  h.Name,
			Type:  h.Type,
			Color: color,
		})
	}
	for _, l := range leaves {
		var color string
		switch l.Status {
		case StatusApproved:
			color = "green"
		case StatusPending:
			color = "yellow"
		default:
			color = "red"
		}
		entries = append(entries, CalendarEntry{
			Date:    l.StartDate,
			EndDate: l.EndDate,
			Name:    string(l.Type) + " leave",
			Status:  l.Status,
			Color:   color,
		})
	}
	return entries, nil
}
