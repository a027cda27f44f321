package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/user"
)

func TestMain(m *testing.M) {
	core.LoadConfig()
	m.Run()
}

// fakeRepo is a map-backed Repository for exercising the service.
type fakeRepo struct {
	pk      int
	records map[string]*Record
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*Record)}
}

func (r *fakeRepo) CreateRecord(_ context.Context, rec Record) (Record, error) {
	for _, existing := range r.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return Record{}, ErrAlreadyPunchedIn
		}
	}
	r.pk++
	rec.ID = fmt.Sprintf("%d", r.pk)
	r.records[rec.ID] = &rec
	return rec, nil
}

func (r *fakeRepo) GetRecord(_ context.Context, employeeID, date string) (Record, error) {
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date == date {
			return *rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *fakeRepo) GetOpenRecord(_ context.Context, employeeID, date string) (Record, error) {
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date == date && rec.PunchOut == nil {
			return *rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *fakeRepo) CompleteRecord(_ context.Context, id string, out time.Time, campusID string, totalHours float64) (Record, error) {
	rec, ok := r.records[id]
	if !ok || rec.PunchOut != nil {
		return Record{}, ErrAlreadyPunchedOut
	}
	rec.PunchOut = &out
	rec.PunchOutCampusID = campusID
	rec.TotalHours = totalHours
	rec.ExitTime = nil
	return *rec, nil
}

func (r *fakeRepo) MarkExit(_ context.Context, id string, t time.Time) error {
	r.records[id].ExitTime = &t
	return nil
}

func (r *fakeRepo) AccumulateOutOfBounds(_ context.Context, id string, minutes float64, exitTime time.Time) error {
	rec := r.records[id]
	rec.TotalOutOfBoundsTime += minutes
	rec.ExitTime = &exitTime
	return nil
}

func (r *fakeRepo) ClearExit(_ context.Context, id string) error {
	r.records[id].ExitTime = nil
	return nil
}

func (r *fakeRepo) FilterRecords(_ context.Context, filter QueryFilter) ([]Record, error) {
	records := make([]Record, 0)
	for _, rec := range r.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.CampusID != "" && rec.PunchInCampusID != filter.CampusID {
			continue
		}
		if filter.DateFrom != "" && rec.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && rec.Date > filter.DateTo {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (r *fakeRepo) FilterViolations(_ context.Context, filter ViolationFilter) ([]Record, error) {
	records := make([]Record, 0)
	for _, rec := range r.records {
		if rec.TotalOutOfBoundsTime <= filter.Threshold {
			continue
		}
		if filter.CampusID != "" && rec.PunchInCampusID != filter.CampusID {
			continue
		}
		if filter.DateFrom != "" && rec.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && rec.Date > filter.DateTo {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (r *fakeRepo) CountViolations(_ context.Context, employeeID string, threshold float64) (int, error) {
	var n int
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.TotalOutOfBoundsTime > threshold {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) UpsertLegacyRecord(_ context.Context, rec Record) (bool, error) {
	for _, existing := range r.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return false, nil
		}
	}
	r.pk++
	rec.ID = fmt.Sprintf("%d", r.pk)
	r.records[rec.ID] = &rec
	return true, nil
}

// fakeCampuses serves a single square campus.
type fakeCampuses struct {
	campus campus.Campus
	gone   bool
}

func newFakeCampuses() *fakeCampuses {
	return &fakeCampuses{campus: campus.Campus{
		ID:   "c1",
		Name: "North Campus",
		Boundary: []campus.Vertex{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 10},
			{Lat: 10, Lon: 10},
			{Lat: 10, Lon: 0},
		},
	}}
}

func (d *fakeCampuses) FindContaining(_ context.Context, lat, lon float64) (campus.Campus, bool, error) {
	if !d.gone && d.campus.Contains(lat, lon) {
		return d.campus, true, nil
	}
	return campus.Campus{}, false, nil
}

func (d *fakeCampuses) GetByID(_ context.Context, id string) (campus.Campus, error) {
	if d.gone || id != d.campus.ID {
		return campus.Campus{}, campus.ErrNotFound
	}
	return d.campus, nil
}

type fakeUsers struct {
	users map[string]*user.User
}

func (d *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	if usr, ok := d.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (d *fakeUsers) FlagRedNotice(_ context.Context, id, reason string) (user.User, error) {
	usr, ok := d.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.RedNoticeIssued = true
	usr.RedNoticeReason = reason
	return *usr, nil
}

var testEmployee = user.User{
	ID:         "u1",
	EmployeeID: "emp-123",
	FullName:   "Test Employee",
	Role:       user.RoleEmployee,
}

func newTestService(repo *fakeRepo, campuses *fakeCampuses) *Service {
	users := &fakeUsers{users: map[string]*user.User{testEmployee.ID: {
		ID:         testEmployee.ID,
		EmployeeID: testEmployee.EmployeeID,
		FullName:   testEmployee.FullName,
		Role:       testEmployee.Role,
	}}}
	return NewService(repo, campuses, users, nil)
}

func setNow(t *testing.T, at time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = time.Now })
}

var (
	inside  = Coordinates{Latitude: 5, Longitude: 5}
	outside = Coordinates{Latitude: 50, Longitude: 50}
)

func TestPunchIn(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC) // a Monday

	t.Run("opens a present session", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		setNow(t, day)

		rec, c, err := svc.PunchIn(ctx, testEmployee, inside)
		if err != nil {
			t.Fatalf("PunchIn() failed: %v", err)
		}
		if rec.Status != StatusPresent {
			t.Errorf("Status = %v; want %v", rec.Status, StatusPresent)
		}
		if rec.Date != "2021-03-08" {
			t.Errorf("Date = %v; want 2021-03-08", rec.Date)
		}
		if c.Name != "North Campus" {
			t.Errorf("campus = %v; want North Campus", c.Name)
		}
	})

	t.Run("second punch-in same day fails", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		setNow(t, day)

		if _, _, err := svc.PunchIn(ctx, testEmployee, inside); err != nil {
			t.Fatalf("PunchIn() failed: %v", err)
		}
		if _, _, err := svc.PunchIn(ctx, testEmployee, inside); err != ErrAlreadyPunchedIn {
			t.Errorf("err = %v; want ErrAlreadyPunchedIn", err)
		}
	})

	t.Run("outside every campus fails", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		setNow(t, day)

		if _, _, err := svc.PunchIn(ctx, testEmployee, outside); err != ErrOutsideGeofence {
			t.Errorf("err = %v; want ErrOutsideGeofence", err)
		}
	})
}

func TestPunchOut(t *testing.T) {
	ctx := context.Background()
	morning := time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC)

	t.Run("without a session fails", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		setNow(t, morning)

		if _, _, err := svc.PunchOut(ctx, testEmployee, inside); err != ErrNoActiveSession {
			t.Errorf("err = %v; want ErrNoActiveSession", err)
		}
	})

	t.Run("computes total hours", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())

		setNow(t, morning)
		if _, _, err := svc.PunchIn(ctx, testEmployee, inside); err != nil {
			t.Fatalf("PunchIn() failed: %v", err)
		}

		setNow(t, morning.Add(8*time.Hour+30*time.Minute)) // 17:30
		rec, _, err := svc.PunchOut(ctx, testEmployee, inside)
		if err != nil {
			t.Fatalf("PunchOut() failed: %v", err)
		}
		if rec.TotalHours != 8.5 {
			t.Errorf("TotalHours = %v; want 8.5", rec.TotalHours)
		}
		if rec.PunchOut == nil {
			t.Error("PunchOut timestamp not set")
		}
	})

	t.Run("second punch-out fails", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())

		setNow(t, morning)
		if _, _, err := svc.PunchIn(ctx, testEmployee, inside); err != nil {
			t.Fatalf("PunchIn() failed: %v", err)
		}
		setNow(t, morning.Add(8*time.Hour))
		if _, _, err := svc.PunchOut(ctx, testEmployee, inside); err != nil {
			t.Fatalf("PunchOut() failed: %v", err)
		}
		if _, _, err := svc.PunchOut(ctx, testEmployee, inside); err != ErrAlreadyPunchedOut {
			t.Errorf("err = %v; want ErrAlreadyPunchedOut", err)
		}
	})
}

func TestTrackLocation(t *testing.T) {
	ctx := context.Background()
	morning := time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC)

	punchIn := func(t *testing.T, svc *Service) {
		t.Helper()
		setNow(t, morning)
		if _, _, err := svc.PunchIn(ctx, testEmployee, inside); err != nil {
			t.Fatalf("PunchIn() failed: %v", err)
		}
	}

	t.Run("without a session fails", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		setNow(t, morning)

		if _, _, err := svc.TrackLocation(ctx, testEmployee, inside); err != ErrNoActiveSession {
			t.Errorf("err = %v; want ErrNoActiveSession", err)
		}
	})

	t.Run("inside pings accumulate nothing", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		punchIn(t, svc)

		for i := 1; i <= 3; i++ {
			setNow(t, morning.Add(time.Duration(i)*10*time.Minute))
			rec, warned, err := svc.TrackLocation(ctx, testEmployee, inside)
			if err != nil {
				t.Fatalf("TrackLocation() failed: %v", err)
			}
			if rec.TotalOutOfBoundsTime != 0 {
				t.Errorf("TotalOutOfBoundsTime = %v; want 0", rec.TotalOutOfBoundsTime)
			}
			if warned {
				t.Error("warned = true; want false")
			}
		}
	})

	t.Run("outside time accumulates between pings", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, newFakeCampuses())
		punchIn(t, svc)

		// first outside ping only marks the exit
		setNow(t, morning.Add(10*time.Minute))
		rec, warned, err := svc.TrackLocation(ctx, testEmployee, outside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.TotalOutOfBoundsTime != 0 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 0", rec.TotalOutOfBoundsTime)
		}
		if rec.ExitTime == nil {
			t.Fatal("ExitTime not marked")
		}

		// 15 minutes later, still outside
		setNow(t, morning.Add(25*time.Minute))
		rec, warned, err = svc.TrackLocation(ctx, testEmployee, outside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.TotalOutOfBoundsTime != 15 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 15", rec.TotalOutOfBoundsTime)
		}
		if warned {
			t.Error("warned = true below threshold")
		}

		// another 20 minutes pushes past the 30 minute threshold
		setNow(t, morning.Add(45*time.Minute))
		rec, warned, err = svc.TrackLocation(ctx, testEmployee, outside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.TotalOutOfBoundsTime != 35 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 35", rec.TotalOutOfBoundsTime)
		}
		if !warned {
			t.Error("warned = false above threshold")
		}
	})

	t.Run("returning inside clears the mark but not the total", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, newFakeCampuses())
		punchIn(t, svc)

		setNow(t, morning.Add(10*time.Minute))
		if _, _, err := svc.TrackLocation(ctx, testEmployee, outside); err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		setNow(t, morning.Add(20*time.Minute))
		if _, _, err := svc.TrackLocation(ctx, testEmployee, outside); err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}

		setNow(t, morning.Add(30*time.Minute))
		rec, _, err := svc.TrackLocation(ctx, testEmployee, inside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.ExitTime != nil {
			t.Error("ExitTime not cleared on re-entry")
		}
		if rec.TotalOutOfBoundsTime != 10 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 10", rec.TotalOutOfBoundsTime)
		}

		// a fresh excursion accumulates on top
		setNow(t, morning.Add(40*time.Minute))
		if _, _, err = svc.TrackLocation(ctx, testEmployee, outside); err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		setNow(t, morning.Add(50*time.Minute))
		rec, _, err = svc.TrackLocation(ctx, testEmployee, outside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.TotalOutOfBoundsTime != 20 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 20", rec.TotalOutOfBoundsTime)
		}
	})

	t.Run("deleted campus counts as outside", func(t *testing.T) {
		campuses := newFakeCampuses()
		svc := newTestService(newFakeRepo(), campuses)
		punchIn(t, svc)

		campuses.gone = true

		setNow(t, morning.Add(10*time.Minute))
		rec, _, err := svc.TrackLocation(ctx, testEmployee, inside)
		if err != nil {
			t.Fatalf("TrackLocation() failed: %v", err)
		}
		if rec.ExitTime == nil {
			t.Error("ExitTime not marked after campus removal")
		}
	})
}

func TestViolations(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC) // a Wednesday
	setNow(t, day)

	repo := newFakeRepo()
	svc := newTestService(repo, newFakeCampuses())

	add := func(employeeID, name, date string, minutes float64) {
		repo.pk++
		id := fmt.Sprintf("%d", repo.pk)
		repo.records[id] = &Record{
			ID: id, EmployeeID: employeeID, EmployeeName: name, Date: date,
			PunchInCampusID: "c1", TotalOutOfBoundsTime: minutes, Status: StatusPresent,
		}
	}
	add("emp-1", "Offender", "2021-03-10", 45.678) // today, over
	add("emp-2", "Fine", "2021-03-10", 12)         // today, under
	add("emp-3", "Monday Offender", "2021-03-08", 31) // this week, over
	add("emp-4", "Last Week", "2021-03-05", 90)       // previous week

	t.Run("daily", func(t *testing.T) {
		violations, err := svc.DailyViolations(ctx, "")
		if err != nil {
			t.Fatalf("DailyViolations() failed: %v", err)
		}
		if len(violations) != 1 {
			t.Fatalf("len(violations) = %d; want 1", len(violations))
		}
		if violations[0].EmployeeID != "emp-1" {
			t.Errorf("EmployeeID = %v; want emp-1", violations[0].EmployeeID)
		}
		if violations[0].TotalOutOfBoundsTime != 45.68 {
			t.Errorf("TotalOutOfBoundsTime = %v; want 45.68 (rounded)", violations[0].TotalOutOfBoundsTime)
		}
	})

	t.Run("weekly runs from Monday", func(t *testing.T) {
		violations, err := svc.WeeklyViolations(ctx, "")
		if err != nil {
			t.Fatalf("WeeklyViolations() failed: %v", err)
		}
		if len(violations) != 2 {
			t.Fatalf("len(violations) = %d; want 2", len(violations))
		}
	})
}

func TestIssueRedNotice(t *testing.T) {
	ctx := context.Background()
	setNow(t, time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC))

	seed := func(repo *fakeRepo, days int) {
		for i := 0; i < days; i++ {
			repo.pk++
			id := fmt.Sprintf("%d", repo.pk)
			repo.records[id] = &Record{
				ID:                   id,
				EmployeeID:           testEmployee.EmployeeID,
				Date:                 fmt.Sprintf("2021-03-%02d", i+1),
				TotalOutOfBoundsTime: 60,
			}
		}
	}

	t.Run("below the limit is not eligible", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, newFakeCampuses())
		seed(repo, core.Conf.Attendance.RedNoticeLimit-1)

		_, count, err := svc.IssueRedNotice(ctx, testEmployee.ID, "repeated absences")
		if err != ErrNotEligible {
			t.Errorf("err = %v; want ErrNotEligible", err)
		}
		if count != core.Conf.Attendance.RedNoticeLimit-1 {
			t.Errorf("count = %d; want %d", count, core.Conf.Attendance.RedNoticeLimit-1)
		}
	})

	t.Run("at the limit flags the user", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, newFakeCampuses())
		seed(repo, core.Conf.Attendance.RedNoticeLimit)

		usr, count, err := svc.IssueRedNotice(ctx, testEmployee.ID, "repeated absences")
		if err != nil {
			t.Fatalf("IssueRedNotice() failed: %v", err)
		}
		if !usr.RedNoticeIssued {
			t.Error("RedNoticeIssued = false; want true")
		}
		if usr.RedNoticeReason != "repeated absences" {
			t.Errorf("RedNoticeReason = %q", usr.RedNoticeReason)
		}
		if count != core.Conf.Attendance.RedNoticeLimit {
			t.Errorf("count = %d; want %d", count, core.Conf.Attendance.RedNoticeLimit)
		}

		// idempotent
		if _, _, err = svc.IssueRedNotice(ctx, testEmployee.ID, "repeated absences"); err != nil {
			t.Errorf("re-issue failed: %v", err)
		}
	})
}

func TestSyncLegacy(t *testing.T) {
	ctx := context.Background()
	setNow(t, time.Date(2021, 3, 10, 18, 0, 0, 0, time.UTC))

	t.Run("no source configured", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeCampuses())
		if _, err := svc.SyncLegacy(ctx); err != ErrSyncUnavailable {
			t.Errorf("err = %v; want ErrSyncUnavailable", err)
		}
	})

	t.Run("inserts only new punches", func(t *testing.T) {
		repo := newFakeRepo()
		punchIn := time.Date(2021, 3, 10, 9, 0, 0, 0, time.UTC)
		punchOut := punchIn.Add(8 * time.Hour)
		src := punchSourceFunc(func(context.Context) ([]LegacyPunch, error) {
			return []LegacyPunch{
				{EmployeeID: "emp-a", PunchIn: punchIn, PunchOut: &punchOut, Date: "2021-03-10"},
				{EmployeeID: "emp-b", PunchIn: punchIn, Date: "2021-03-10", Status: string(StatusLate)},
			}, nil
		})
		svc := NewService(repo, newFakeCampuses(), &fakeUsers{}, src)

		synced, err := svc.SyncLegacy(ctx)
		if err != nil {
			t.Fatalf("SyncLegacy() failed: %v", err)
		}
		if synced != 2 {
			t.Errorf("synced = %d; want 2", synced)
		}

		rec, err := repo.GetRecord(ctx, "emp-a", "2021-03-10")
		if err != nil {
			t.Fatalf("GetRecord() failed: %v", err)
		}
		if rec.TotalHours != 8 {
			t.Errorf("TotalHours = %v; want 8", rec.TotalHours)
		}
		if rec.SyncedAt == nil {
			t.Error("SyncedAt not set")
		}

		// re-running does not duplicate
		synced, err = svc.SyncLegacy(ctx)
		if err != nil {
			t.Fatalf("SyncLegacy() failed: %v", err)
		}
		if synced != 0 {
			t.Errorf("synced = %d; want 0", synced)
		}
	})
}

type punchSourceFunc func(context.Context) ([]LegacyPunch, error)

func (f punchSourceFunc) FetchDailyPunches(ctx context.Context) ([]LegacyPunch, error) {
	return f(ctx)
}

func TestPeriodRange(t *testing.T) {
	wednesday := time.Date(2021, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		period   Period
		wantFrom string
		wantTo   string
	}{
		{PeriodDaily, "2021-03-10", "2021-03-10"},
		{PeriodWeekly, "2021-03-08", "2021-03-10"},
		{PeriodMonthly, "2021-03-01", "2021-03-10"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			from, to := tt.period.Range(wednesday)
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("Range() = (%v, %v); want (%v, %v)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}

	t.Run("weekly on a Sunday spans the whole week", func(t *testing.T) {
		sunday := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)
		from, _ := PeriodWeekly.Range(sunday)
		if from != "2021-03-08" {
			t.Errorf("from = %v; want 2021-03-08", from)
		}
	})
}
