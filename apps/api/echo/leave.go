package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/leave"
	"github.com/makonzi/uwepo/core/user"
)

type leaveApi struct {
	opts *Options
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := leaveApi{opts: opts}

	lg := g.Group("/leaves", jwt)
	lg.POST("", api.apply)
	lg.GET("/me", api.mine)
	lg.GET("/balance", api.balance)
	lg.GET("/calendar", api.calendar)

	lg.GET("/pending", api.pending, capabilityMiddleware(user.CapManageLeave))
	lg.POST("/:id/approve", api.approve, capabilityMiddleware(user.CapManageLeave))
	lg.POST("/:id/reject", api.reject, capabilityMiddleware(user.CapManageLeave))
}

func (api *leaveApi) apply(ctx echo.Context) error {
	var data leave.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.opts.LeaveSvc.Apply(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "applying for leave")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *leaveApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	requests, err := api.opts.LeaveSvc.ListMine(ctx.Request().Context(), usr, leave.Status(ctx.QueryParam("status")))
	if err != nil {
		return errors.Wrap(err, "querying leave requests")
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *leaveApi) balance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.opts.LeaveSvc.BalanceFor(usr))
}

func (api *leaveApi) calendar(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.opts.LeaveSvc.Calendar(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *leaveApi) pending(ctx echo.Context) error {
	campusID, err := api.scopeCampus(ctx)
	if err != nil {
		return err
	}
	requests, err := api.opts.LeaveSvc.PendingForCampus(ctx.Request().Context(), campusID)
	if err != nil {
		return errors.Wrap(err, "querying pending leaves")
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *leaveApi) approve(ctx echo.Context) error {
	campusID, err := api.scopeCampus(ctx)
	if err != nil {
		return err
	}
	req, err := api.opts.LeaveSvc.Approve(ctx.Request().Context(), ctx.Param("id"), campusID)
	if err != nil {
		return errors.Wrap(err, "approving leave")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *leaveApi) reject(ctx echo.Context) error {
	var data RejectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RejectRequest")
	}

	campusID, err := api.scopeCampus(ctx)
	if err != nil {
		return err
	}
	req, err := api.opts.LeaveSvc.Reject(ctx.Request().Context(), ctx.Param("id"), campusID, data.Reason)
	if err != nil {
		return errors.Wrap(err, "rejecting leave")
	}
	return ctx.JSON(http.StatusOK, req)
}

// scopeCampus pins admins to their own campus; super admins settle anywhere.
func (api *leaveApi) scopeCampus(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.Role == user.RoleSuperAdmin {
		return ctx.QueryParam("campus_id"), nil
	}
	return claims.CampusID, nil
}

type RejectRequest struct {
	Reason string `json:"reason"`
}
