package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/user"
)

type campusApi struct {
	opts *Options
}

func registerCampusAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := campusApi{opts: opts}

	cg := g.Group("/campuses", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("", api.create, capabilityMiddleware(user.CapManageCampuses))
}

func (api *campusApi) create(ctx echo.Context) error {
	var data campus.NewCampus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCampus")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.CampusSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating campus")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *campusApi) query(ctx echo.Context) error {
	campuses, err := api.opts.CampusSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying campuses")
	}
	return ctx.JSON(http.StatusOK, campuses)
}

func (api *campusApi) retrieve(ctx echo.Context) error {
	c, err := api.opts.CampusSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding campus by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}
