package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/user"
)

type attendanceApi struct {
	opts *Options
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{opts: opts}

	ag := g.Group("/attendance", jwt)
	ag.POST("/punch-in", api.punchIn, capabilityMiddleware(user.CapPunchAttendance))
	ag.POST("/punch-out", api.punchOut, capabilityMiddleware(user.CapPunchAttendance))
	ag.POST("/track", api.track, capabilityMiddleware(user.CapPunchAttendance))
	ag.GET("/me", api.myRecords, capabilityMiddleware(user.CapPunchAttendance))

	ag.GET("/campus", api.campusRecords, capabilityMiddleware(user.CapViewCampusReports))
	ag.GET("/violations", api.violations, capabilityMiddleware(user.CapViewCampusReports))
	ag.POST("/red-notice/:userID", api.issueRedNotice, capabilityMiddleware(user.CapIssueRedNotice))
	ag.POST("/sync", api.syncLegacy, capabilityMiddleware(user.CapSyncLegacy))
}

func (api *attendanceApi) bindCoords(ctx echo.Context) (attendance.Coordinates, error) {
	var coords attendance.Coordinates
	if err := ctx.Bind(&coords); err != nil {
		return coords, errors.Wrap(err, "binding to Coordinates")
	}
	if err := coords.Validate(api.opts.Validate); err != nil {
		return coords, err
	}
	return coords, nil
}

func (api *attendanceApi) punchIn(ctx echo.Context) error {
	coords, err := api.bindCoords(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, c, err := api.opts.AttendanceSvc.PunchIn(ctx.Request().Context(), usr, coords)
	if err != nil {
		return errors.Wrap(err, "punching in")
	}
	return ctx.JSON(http.StatusCreated, PunchResponse{Record: rec, CampusName: c.Name})
}

func (api *attendanceApi) punchOut(ctx echo.Context) error {
	coords, err := api.bindCoords(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, c, err := api.opts.AttendanceSvc.PunchOut(ctx.Request().Context(), usr, coords)
	if err != nil {
		return errors.Wrap(err, "punching out")
	}
	return ctx.JSON(http.StatusOK, PunchResponse{Record: rec, CampusName: c.Name})
}

func (api *attendanceApi) track(ctx echo.Context) error {
	coords, err := api.bindCoords(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, warned, err := api.opts.AttendanceSvc.TrackLocation(ctx.Request().Context(), usr, coords)
	if err != nil {
		return errors.Wrap(err, "tracking location")
	}

	res := TrackResponse{Record: rec}
	if warned {
		res.Warning = "You have been outside campus bounds beyond the allowed time."
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) myRecords(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	period := attendance.Period(ctx.QueryParam("period"))
	if period == "" {
		period = attendance.PeriodMonthly
	}
	status := attendance.Status(ctx.QueryParam("status"))

	records, err := api.opts.AttendanceSvc.EmployeeRecords(ctx.Request().Context(), usr.EmployeeID, period, status)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) campusRecords(ctx echo.Context) error {
	campusID, err := api.scopeCampus(ctx)
	if err != nil {
		return err
	}
	records, err := api.opts.AttendanceSvc.CampusRecords(ctx.Request().Context(), campusID)
	if err != nil {
		return errors.Wrap(err, "querying campus records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) violations(ctx echo.Context) error {
	campusID, err := api.scopeCampus(ctx)
	if err != nil {
		return err
	}

	var violations []attendance.Violation
	switch ctx.QueryParam("period") {
	case "", string(attendance.PeriodDaily):
		violations, err = api.opts.AttendanceSvc.DailyViolations(ctx.Request().Context(), campusID)
	case string(attendance.PeriodWeekly):
		violations, err = api.opts.AttendanceSvc.WeeklyViolations(ctx.Request().Context(), campusID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "period must be daily or weekly")
	}
	if err != nil {
		return errors.Wrap(err, "querying violations")
	}
	return ctx.JSON(http.StatusOK, violations)
}

func (api *attendanceApi) issueRedNotice(ctx echo.Context) error {
	var data RedNoticeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RedNoticeRequest")
	}

	usr, count, err := api.opts.AttendanceSvc.IssueRedNotice(ctx.Request().Context(), ctx.Param("userID"), data.Reason)
	if err != nil {
		return errors.Wrap(err, "issuing red notice")
	}
	return ctx.JSON(http.StatusOK, RedNoticeResponse{User: usr, ViolationCount: count})
}

func (api *attendanceApi) syncLegacy(ctx echo.Context) error {
	synced, err := api.opts.AttendanceSvc.SyncLegacy(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "syncing legacy punches")
	}
	return ctx.JSON(http.StatusOK, SyncResponse{Synced: synced})
}

// scopeCampus resolves the campus an admin may query. Super admins can pass
// any campus_id (or none for all); everyone else is pinned to their own.
func (api *attendanceApi) scopeCampus(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.Role == user.RoleSuperAdmin {
		return ctx.QueryParam("campus_id"), nil
	}
	return claims.CampusID, nil
}

type (
	PunchResponse struct {
		attendance.Record
		CampusName string `json:"campus_name,omitempty"`
	}

	TrackResponse struct {
		attendance.Record
		Warning string `json:"warning,omitempty"`
	}

	RedNoticeRequest struct {
		Reason string `json:"reason"`
	}

	RedNoticeResponse struct {
		User           user.User `json:"user"`
		ViolationCount int       `json:"violation_count"`
	}

	SyncResponse struct {
		Synced int `json:"synced"`
	}
)
