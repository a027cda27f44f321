package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/inventory"
	"github.com/makonzi/uwepo/core/user"
)

type inventoryApi struct {
	opts *Options
}

func registerInventoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := inventoryApi{opts: opts}

	ig := g.Group("/inventory", jwt)
	ig.GET("/items", api.items)
	ig.POST("/requests", api.request, capabilityMiddleware(user.CapRequestInventory))
	ig.GET("/requests/me", api.myRequests, capabilityMiddleware(user.CapRequestInventory))

	mg := ig.Group("", capabilityMiddleware(user.CapManageInventory))
	mg.POST("/items", api.addItem)
	mg.PUT("/items/:id", api.setQuantity)
	mg.DELETE("/items/:id", api.deleteItem)
	mg.GET("/requests/pending", api.pending)
	mg.POST("/requests/:id/approve", api.approve)
	mg.POST("/requests/:id/reject", api.reject)
}

func (api *inventoryApi) campusID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.Role == user.RoleSuperAdmin {
		if id := ctx.QueryParam("campus_id"); id != "" {
			return id, nil
		}
	}
	return claims.CampusID, nil
}

func (api *inventoryApi) items(ctx echo.Context) error {
	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	items, err := api.opts.InventorySvc.ListItems(ctx.Request().Context(), campusID)
	if err != nil {
		return errors.Wrap(err, "querying items")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *inventoryApi) addItem(ctx echo.Context) error {
	var data inventory.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	item, err := api.opts.InventorySvc.AddItem(ctx.Request().Context(), data, campusID)
	if err != nil {
		return errors.Wrap(err, "adding item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *inventoryApi) setQuantity(ctx echo.Context) error {
	var data SetQuantityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetQuantityRequest")
	}
	if data.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}

	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	item, err := api.opts.InventorySvc.SetQuantity(ctx.Request().Context(), ctx.Param("id"), campusID, data.Quantity)
	if err != nil {
		return errors.Wrap(err, "updating item quantity")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *inventoryApi) deleteItem(ctx echo.Context) error {
	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	if err := api.opts.InventorySvc.DeleteItem(ctx.Request().Context(), ctx.Param("id"), campusID); err != nil {
		return errors.Wrap(err, "deleting item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *inventoryApi) request(ctx echo.Context) error {
	var data inventory.NewRequest
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
	req, err := api.opts.InventorySvc.Request(ctx.Request().Context(), data, usr.EmployeeID)
	if err != nil {
		return errors.Wrap(err, "requesting item")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *inventoryApi) myRequests(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	requests, err := api.opts.InventorySvc.MyRequests(ctx.Request().Context(), usr.EmployeeID)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *inventoryApi) pending(ctx echo.Context) error {
	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	requests, err := api.opts.InventorySvc.PendingForCampus(ctx.Request().Context(), campusID)
	if err != nil {
		return errors.Wrap(err, "querying pending requests")
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *inventoryApi) approve(ctx echo.Context) error {
	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	req, err := api.opts.InventorySvc.Approve(ctx.Request().Context(), ctx.Param("id"), campusID)
	if err != nil {
		return errors.Wrap(err, "approving request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *inventoryApi) reject(ctx echo.Context) error {
	campusID, err := api.campusID(ctx)
	if err != nil {
		return err
	}
	req, err := api.opts.InventorySvc.Reject(ctx.Request().Context(), ctx.Param("id"), campusID)
	if err != nil {
		return errors.Wrap(err, "rejecting request")
	}
	return ctx.JSON(http.StatusOK, req)
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}
