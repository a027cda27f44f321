package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/announcement"
	"github.com/makonzi/uwepo/core/user"
)

type announcementApi struct {
	opts *Options
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := announcementApi{opts: opts}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.feed)
	ag.POST("", api.post, capabilityMiddleware(user.CapPostAnnouncements))
	ag.DELETE("/:id", api.delete, capabilityMiddleware(user.CapPostAnnouncements))
}

func (api *announcementApi) post(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// university-wide posts are reserved for the VC office
	if data.Level == announcement.LevelUniversity && claims.Role != user.RoleSuperAdmin {
		return errHttpForbidden
	}

	ann, err := api.opts.AnnouncementSvc.Post(ctx.Request().Context(), data, claims.FullName, claims.CampusID)
	if err != nil {
		return errors.Wrap(err, "posting announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announcementApi) feed(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var since time.Time
	if s := ctx.QueryParam("since"); s != "" {
		since, err = time.Parse("2006-01-02", s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be YYYY-MM-DD")
		}
	}

	announcements, err := api.opts.AnnouncementSvc.Feed(ctx.Request().Context(), claims.CampusID, since)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *announcementApi) delete(ctx echo.Context) error {
	if err := api.opts.AnnouncementSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
