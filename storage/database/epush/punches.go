// Package epushdb reads daily punches off the EPUSH biometric machine
// database so they can be merged into the attendance store.
package epushdb

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/attendance"
)

const dailyPunchesQuery = `
SELECT employee_id, punch_in, punch_out, status
FROM daily_attendance
WHERE DATE(punch_in) = CURDATE()`

type punchRow struct {
	EmployeeID string     `db:"employee_id"`
	PunchIn    time.Time  `db:"punch_in"`
	PunchOut   *time.Time `db:"punch_out"`
	Status     *string    `db:"status"`
}

type PunchSource struct {
	db *sqlx.DB
}

var _ attendance.PunchSource = (*PunchSource)(nil)

// Open connects to the legacy machine database. Returns nil when no DSN is
// configured so the sync endpoint can report itself unavailable.
func Open(conf *core.Config) (*PunchSource, error) {
	if conf.LegacyDB.DSN == "" {
		return nil, nil
	}
	db, err := sqlx.Open("mysql", conf.LegacyDB.DSN+"?parseTime=true")
	if err != nil {
		return nil, errors.Wrap(err, "opening legacy DB")
	}
	return &PunchSource{db: db}, nil
}

func (src *PunchSource) FetchDailyPunches(ctx context.Context) ([]attendance.LegacyPunch, error) {
	var rows []punchRow
	if err := src.db.SelectContext(ctx, &rows, dailyPunchesQuery); err != nil {
		return nil, errors.Wrap(err, "querying legacy punches")
	}

	punches := make([]attendance.LegacyPunch, 0, len(rows))
	for _, row := range rows {
		punch := attendance.LegacyPunch{
			EmployeeID: row.EmployeeID,
			PunchIn:    row.PunchIn,
			PunchOut:   row.PunchOut,
			Date:       row.PunchIn.Format(attendance.DateLayout),
		}
		if row.Status != nil {
			punch.Status = *row.Status
		}
		punches = append(punches, punch)
	}
	return punches, nil
}

func (src *PunchSource) Close() error {
	return src.db.Close()
}
