package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/activity"
)

type activityApi struct {
	svc *activity.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *activity.Service) {
	api := activityApi{svc: svc}

	g.GET("/activity-logs", api.query, jwt, adminMiddleware())
}

// Handlers

func (api *activityApi) query(ctx echo.Context) error {
	filter := activity.Filter{
		Level:  ctx.QueryParam("level"),
		Action: ctx.QueryParam("action"),
		Search: ctx.QueryParam("search"),
	}
	if page := ctx.QueryParam("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil {
			filter.Page = n
		}
	}
	if limit := ctx.QueryParam("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}
	if since := ctx.QueryParam("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filter.Since = t
		}
	}
	if until := ctx.QueryParam("until"); until != "" {
		if t, err := time.Parse(time.RFC3339, until); err == nil {
			filter.Until = t
		}
	}

	page, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying activity logs")
	}
	return ctx.JSON(http.StatusOK, page)
}
