package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound          = errors.New("attendance record not found")
	ErrAlreadyPunchedIn  = errors.New("already punched in today")
	ErrAlreadyPunchedOut = errors.New("already punched out today")
	ErrNoActiveSession   = errors.New("no active punch-in session found")
	ErrOutsideGeofence   = errors.New("location outside campus geofence")
	ErrNotEligible       = errors.New("user does not meet red notice criteria yet")
	ErrSyncUnavailable   = errors.New("legacy attendance sync is not configured")
)

type (
	Repository interface {
		// CreateRecord inserts a new employee-day record. Inserting a second
		// record for the same (employee, date) fails with ErrAlreadyPunchedIn;
		// the store enforces this with a unique index so concurrent punch-ins
		// cannot both succeed.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, employeeID, date string) (Record, error)
		// GetOpenRecord returns the record only while punch_out is unset.
		GetOpenRecord(ctx context.Context, employeeID, date string) (Record, error)
		// CompleteRecord sets the punch-out fields only if punch_out is still
		// null; a lost race surfaces as ErrAlreadyPunchedOut.
		CompleteRecord(ctx context.Context, id string, out time.Time, campusID string, totalHours float64) (Record, error)
		// MarkExit stamps the start of an excursion outside the boundary.
		MarkExit(ctx context.Context, id string, t time.Time) error
		// AccumulateOutOfBounds atomically increments the accumulator and
		// advances exit_time, avoiding read-modify-write races between pings.
		AccumulateOutOfBounds(ctx context.Context, id string, minutes float64, exitTime time.Time) error
		ClearExit(ctx context.Context, id string) error
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		FilterViolations(ctx context.Context, filter ViolationFilter) ([]Record, error)
		CountViolations(ctx context.Context, employeeID string, threshold float64) (int, error)
		// UpsertLegacyRecord inserts the record unless one already exists for
		// the (employee, date); reports whether it inserted.
		UpsertLegacyRecord(ctx context.Context, rec Record) (bool, error)
	}

	// CampusDirectory is the slice of the campus service the tracker needs.
	CampusDirectory interface {
		FindContaining(ctx context.Context, lat, lon float64) (campus.Campus, bool, error)
		GetByID(ctx context.Context, id string) (campus.Campus, error)
	}

	// UserDirectory resolves users for escalation checks.
	UserDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		FlagRedNotice(ctx context.Context, id, reason string) (user.User, error)
	}

	// PunchSource feeds punches from the legacy biometric machines.
	PunchSource interface {
		FetchDailyPunches(ctx context.Context) ([]LegacyPunch, error)
	}

	Service struct {
		repo     Repository
		campuses CampusDirectory
		users    UserDirectory
		legacy   PunchSource // nil when no legacy DB is configured
	}
)

func NewService(repo Repository, campuses CampusDirectory, users UserDirectory, legacy PunchSource) *Service {
	return &Service{repo: repo, campuses: campuses, users: users, legacy: legacy}
}

// threshold returns the violation threshold in minutes.
func threshold() float64 {
	return core.Conf.Attendance.OutOfBoundsThreshold.Minutes()
}

// PunchIn opens today's attendance session for the employee, anchored to the
// first campus whose boundary contains the coordinates.
func (svc *Service) PunchIn(ctx context.Context, usr user.User, coords Coordinates) (Record, campus.Campus, error) {
	now := nowFunc().UTC()
	today := DateOf(now)

	if _, err := svc.repo.GetRecord(ctx, usr.EmployeeID, today); err == nil {
		return Record{}, campus.Campus{}, ErrAlreadyPunchedIn
	} else if err != ErrNotFound {
		return Record{}, campus.Campus{}, err
	}

	c, ok, err := svc.campuses.FindContaining(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return Record{}, campus.Campus{}, err
	}
	if !ok {
		return Record{}, campus.Campus{}, ErrOutsideGeofence
	}

	rec := Record{
		EmployeeID:           usr.EmployeeID,
		EmployeeName:         usr.FullName,
		Date:                 today,
		PunchIn:              now,
		PunchInCampusID:      c.ID,
		TotalOutOfBoundsTime: 0,
		Status:               StatusPresent,
	}
	rec, err = svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		return Record{}, campus.Campus{}, err
	}
	return rec, c, nil
}

// PunchOut closes today's session. The out-of-bounds accumulator is frozen at
// its current value and reported back.
func (svc *Service) PunchOut(ctx context.Context, usr user.User, coords Coordinates) (Record, campus.Campus, error) {
	now := nowFunc().UTC()
	today := DateOf(now)

	rec, err := svc.repo.GetRecord(ctx, usr.EmployeeID, today)
	if err != nil {
		if err == ErrNotFound {
			return Record{}, campus.Campus{}, ErrNoActiveSession
		}
		return Record{}, campus.Campus{}, err
	}
	if rec.PunchOut != nil {
		return Record{}, campus.Campus{}, ErrAlreadyPunchedOut
	}

	c, ok, err := svc.campuses.FindContaining(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return Record{}, campus.Campus{}, err
	}
	if !ok {
		return Record{}, campus.Campus{}, ErrOutsideGeofence
	}

	totalHours := now.Sub(rec.PunchIn).Hours()
	rec, err = svc.repo.CompleteRecord(ctx, rec.ID, now, c.ID, totalHours)
	if err != nil {
		return Record{}, campus.Campus{}, err
	}
	return rec, c, nil
}

// TrackLocation processes a periodic location ping for an open session.
//
// Outside the punch-in campus boundary the first ping marks the exit time;
// each following outside ping adds the minutes elapsed since the last mark to
// the accumulator and advances the mark, so the total converges on the
// wall-clock time spent outside at ping granularity. An inside ping clears
// the mark without touching the accumulator. A campus that has disappeared
// since punch-in counts as outside.
//
// The returned bool is true once the accumulator exceeds the configured
// threshold, i.e. the caller should surface a warning.
func (svc *Service) TrackLocation(ctx context.Context, usr user.User, coords Coordinates) (Record, bool, error) {
	now := nowFunc().UTC()
	today := DateOf(now)

	rec, err := svc.repo.GetOpenRecord(ctx, usr.EmployeeID, today)
	if err != nil {
		if err == ErrNotFound {
			return Record{}, false, ErrNoActiveSession
		}
		return Record{}, false, err
	}

	inside := false
	c, err := svc.campuses.GetByID(ctx, rec.PunchInCampusID)
	switch err {
	case nil:
		inside = c.Contains(coords.Latitude, coords.Longitude)
	case campus.ErrNotFound:
		// campus deleted mid-session: all time counts as out-of-bounds
	default:
		return Record{}, false, err
	}

	if inside {
		if rec.ExitTime != nil {
			if err := svc.repo.ClearExit(ctx, rec.ID); err != nil {
				return Record{}, false, err
			}
			rec.ExitTime = nil
		}
	} else if rec.ExitTime == nil {
		if err := svc.repo.MarkExit(ctx, rec.ID, now); err != nil {
			return Record{}, false, err
		}
		t := now
		rec.ExitTime = &t
	} else {
		minutes := now.Sub(*rec.ExitTime).Minutes()
		if err := svc.repo.AccumulateOutOfBounds(ctx, rec.ID, minutes, now); err != nil {
			return Record{}, false, err
		}
		rec.TotalOutOfBoundsTime += minutes
		t := now
		rec.ExitTime = &t
	}

	return rec, rec.TotalOutOfBoundsTime > threshold(), nil
}

// DailyViolations lists today's offenders, optionally scoped to a campus.
func (svc *Service) DailyViolations(ctx context.Context, campusID string) ([]Violation, error) {
	today := DateOf(nowFunc())
	return svc.violations(ctx, ViolationFilter{
		DateFrom: today,
		DateTo:   today,
		CampusID: campusID,
	})
}

// WeeklyViolations lists offenders from Monday of the current week through
// today, optionally scoped to a campus.
func (svc *Service) WeeklyViolations(ctx context.Context, campusID string) ([]Violation, error) {
	now := nowFunc().UTC()
	return svc.violations(ctx, ViolationFilter{
		DateFrom: DateOf(weekStart(now)),
		DateTo:   DateOf(now),
		CampusID: campusID,
	})
}

func (svc *Service) violations(ctx context.Context, filter ViolationFilter) ([]Violation, error) {
	filter.Threshold = threshold()
	recs, err := svc.repo.FilterViolations(ctx, filter)
	if err != nil {
		return nil, err
	}
	violations := make([]Violation, 0, len(recs))
	for _, rec := range recs {
		violations = append(violations, Violation{
			EmployeeID:           rec.EmployeeID,
			Name:                 rec.EmployeeName,
			TotalOutOfBoundsTime: math.Round(rec.TotalOutOfBoundsTime*100) / 100,
		})
	}
	return violations, nil
}

// IssueRedNotice flags the user once their historical violation count reaches
// the configured limit. Below the limit it fails with ErrNotEligible; re-runs
// on an already flagged user just re-confirm eligibility.
func (svc *Service) IssueRedNotice(ctx context.Context, userID, reason string) (user.User, int, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, 0, err
	}

	count, err := svc.repo.CountViolations(ctx, usr.EmployeeID, threshold())
	if err != nil {
		return user.User{}, 0, err
	}
	if count < core.Conf.Attendance.RedNoticeLimit {
		return usr, count, ErrNotEligible
	}

	usr, err = svc.users.FlagRedNotice(ctx, usr.ID, reason)
	if err != nil {
		return user.User{}, count, err
	}
	return usr, count, nil
}

// EmployeeRecords lists an employee's records for the reporting period.
func (svc *Service) EmployeeRecords(ctx context.Context, employeeID string, period Period, status Status) ([]Record, error) {
	from, to := period.Range(nowFunc())
	return svc.repo.FilterRecords(ctx, QueryFilter{
		EmployeeID: employeeID,
		DateFrom:   from,
		DateTo:     to,
		Status:     status,
	})
}

// CampusRecords lists all records punched in at the campus.
func (svc *Service) CampusRecords(ctx context.Context, campusID string) ([]Record, error) {
	return svc.repo.FilterRecords(ctx, QueryFilter{CampusID: campusID})
}

// Records lists records matching the filter; report exports use this.
func (svc *Service) Records(ctx context.Context, filter QueryFilter) ([]Record, error) {
	return svc.repo.FilterRecords(ctx, filter)
}

// SyncLegacy pulls today's punches from the legacy biometric DB and inserts
// the ones the store does not have yet. Returns how many were inserted.
func (svc *Service) SyncLegacy(ctx context.Context) (int, error) {
	if svc.legacy == nil {
		return 0, ErrSyncUnavailable
	}
	punches, err := svc.legacy.FetchDailyPunches(ctx)
	if err != nil {
		return 0, err
	}

	now := nowFunc().UTC()
	var synced int
	for _, p := range punches {
		status := Status(p.Status)
		if status == "" {
			status = StatusPresent
		}
		rec := Record{
			EmployeeID: p.EmployeeID,
			Date:       p.Date,
			PunchIn:    p.PunchIn,
			PunchOut:   p.PunchOut,
			Status:     status,
			SyncedAt:   &now,
		}
		if p.PunchOut != nil {
			rec.TotalHours = p.PunchOut.Sub(p.PunchIn).Hours()
		}
		created, err := svc.repo.UpsertLegacyRecord(ctx, rec)
		if err != nil {
			return synced, err
		}
		if created {
			synced++
		}
	}
	return synced, nil
}
