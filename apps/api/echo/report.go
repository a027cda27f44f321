package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/user"
)

type reportApi struct {
	opts *Options
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := reportApi{opts: opts}

	rg := g.Group("/reports", jwt)
	rg.GET("/attendance/me", api.myReport, capabilityMiddleware(user.CapPunchAttendance))
	rg.GET("/attendance", api.campusReport, capabilityMiddleware(user.CapViewCampusReports))
}

// myReport exports the logged-in employee's attendance for the period.
func (api *reportApi) myReport(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	period := attendance.Period(ctx.QueryParam("period"))
	if period == "" {
		period = attendance.PeriodMonthly
	}
	records, err := api.opts.AttendanceSvc.EmployeeRecords(ctx.Request().Context(), usr.EmployeeID, period, "")
	if err != nil {
		return errors.Wrap(err, "querying records")
	}

	title := fmt.Sprintf("Attendance Report (%s) - %s", period, usr.FullName)
	return api.render(ctx, title, records)
}

// campusReport exports an admin's campus records, optionally filtered.
func (api *reportApi) campusReport(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := attendance.QueryFilter{
		EmployeeID: ctx.QueryParam("employee_id"),
		DateFrom:   ctx.QueryParam("date_from"),
		DateTo:     ctx.QueryParam("date_to"),
		Status:     attendance.Status(ctx.QueryParam("status")),
	}
	if claims.Role == user.RoleSuperAdmin {
		filter.CampusID = ctx.QueryParam("campus_id")
	} else {
		filter.CampusID = claims.CampusID
	}
	if period := attendance.Period(ctx.QueryParam("period")); period != "" {
		filter.DateFrom, filter.DateTo = period.Range(time.Now())
	}

	records, err := api.opts.AttendanceSvc.Records(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	return api.render(ctx, "Campus Attendance Report", records)
}

func (api *reportApi) render(ctx echo.Context, title string, records []attendance.Record) error {
	switch ctx.QueryParam("format") {
	case "", "csv":
		data, err := api.opts.ReportSvc.CSV(records)
		if err != nil {
			return errors.Wrap(err, "rendering CSV")
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance.csv"`)
		return ctx.Blob(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := api.opts.ReportSvc.PDF(title, records)
		if err != nil {
			return errors.Wrap(err, "rendering PDF")
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance.pdf"`)
		return ctx.Blob(http.StatusOK, "application/pdf", data)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or pdf")
	}
}
