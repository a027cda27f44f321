package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/makonzi/uwepo/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
	}
	rec.ID = repo.db.nextID()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, employeeID, date string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.records {
		if rec.EmployeeID == employeeID && rec.Date == date {
			return *rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetOpenRecord(ctx context.Context, employeeID, date string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.records {
		if rec.EmployeeID == employeeID && rec.Date == date && rec.PunchOut == nil {
			return *rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) CompleteRecord(ctx context.Context, id string, out time.Time, campusID string, totalHours float64) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.records[id]
	if !ok || rec.PunchOut != nil {
		return attendance.Record{}, attendance.ErrAlreadyPunchedOut
	}
	rec.PunchOut = &out
	rec.PunchOutCampusID = campusID
	rec.TotalHours = totalHours
	rec.ExitTime = nil
	return *rec, nil
}

func (repo *attendanceRepository) MarkExit(ctx context.Context, id string, t time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	rec.ExitTime = &t
	return nil
}

func (repo *attendanceRepository) AccumulateOutOfBounds(ctx context.Context, id string, minutes float64, exitTime time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	rec.TotalOutOfBoundsTime += minutes
	rec.ExitTime = &exitTime
	return nil
}

func (repo *attendanceRepository) ClearExit(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	rec.ExitTime = nil
	return nil
}

// query must be called with at least the read lock held.
func (repo *attendanceRepository) query() []attendance.Record {
	records := make([]attendance.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
	return records
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.query() {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.CampusID != "" && rec.PunchInCampusID != filter.CampusID {
			continue
		}
		if !inRange(rec.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *attendanceRepository) FilterViolations(ctx context.Context, filter attendance.ViolationFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.query() {
		if rec.TotalOutOfBoundsTime <= filter.Threshold {
			continue
		}
		if filter.CampusID != "" && rec.PunchInCampusID != filter.CampusID {
			continue
		}
		if !inRange(rec.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *attendanceRepository) CountViolations(ctx context.Context, employeeID string, threshold float64) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, rec := range repo.db.records {
		if rec.EmployeeID == employeeID && rec.TotalOutOfBoundsTime > threshold {
			n++
		}
	}
	return n, nil
}

func (repo *attendanceRepository) UpsertLegacyRecord(ctx context.Context, rec attendance.Record) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return false, nil
		}
	}
	rec.ID = repo.db.nextID()
	repo.db.records[rec.ID] = &rec
	return true, nil
}
