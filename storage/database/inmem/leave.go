package inmemdb

import (
	"context"
	"sort"

	"github.com/makonzi/uwepo/core/leave"
)

type leaveRepository struct {
	db *DB
}

func NewLeaveRepository(db *DB) leave.Repository {
	return &leaveRepository{db: db}
}

func (repo *leaveRepository) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req.ID = repo.db.nextID()
	repo.db.leaves[req.ID] = &req
	return req, nil
}

func (repo *leaveRepository) GetRequestByID(ctx context.Context, id string) (leave.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.leaves[id]; ok {
		return *req, nil
	}
	return leave.Request{}, leave.ErrNotFound
}

func (repo *leaveRepository) FilterRequests(ctx context.Context, employeeID, campusID string, status leave.Status) ([]leave.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	requests := make([]leave.Request, 0)
	for _, req := range repo.db.leaves {
		if employeeID != "" && req.EmployeeID != employeeID {
			continue
		}
		if campusID != "" && req.CampusID != campusID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		requests = append(requests, *req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RequestedAt.After(requests[j].RequestedAt)
	})
	return requests, nil
}

func (repo *leaveRepository) SettleRequest(ctx context.Context, id string, status leave.Status, rejectionReason string) (leave.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req, ok := repo.db.leaves[id]
	if !ok || req.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrAlreadySettled
	}
	req.Status = status
	if rejectionReason != "" {
		req.RejectionReason = rejectionReason
	}
	return *req, nil
}

func (repo *leaveRepository) QueryAllHolidays(ctx context.Context) ([]leave.Holiday, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	holidays := make([]leave.Holiday, len(repo.db.holidays))
	copy(holidays, repo.db.holidays)
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date < holidays[j].Date })
	return holidays, nil
}
