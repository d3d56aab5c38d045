package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/export"
	"github.com/tmalela/mafunzo/core/exportlog"
)

type exportApi struct {
	executor *export.Executor
	logSvc   *exportlog.Service
}

func registerExportAPI(g *echo.Group, jwt echo.MiddlewareFunc, executor *export.Executor, logSvc *exportlog.Service) {
	api := exportApi{executor: executor, logSvc: logSvc}

	g.POST("/courses/:id/export", api.trigger, jwt, adminMiddleware())
	g.GET("/export-logs", api.queryLogs, jwt, adminMiddleware())
}

// Handlers

// trigger runs a manual export of a course: all its enabled configurations,
// or a single one when config_id is given.
func (api *exportApi) trigger(ctx echo.Context) error {
	var data TriggerExportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TriggerExportRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.executor.Run(
		ctx.Request().Context(),
		ctx.Param("id"),
		export.Context{
			TriggeredBy: exportlog.TriggerManual,
			UserID:      claims.Subject,
			Username:    claims.Username,
		},
		data.ConfigID,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *exportApi) queryLogs(ctx echo.Context) error {
	filter := exportlog.Filter{
		CourseID:    ctx.QueryParam("course_id"),
		TriggeredBy: ctx.QueryParam("triggered_by"),
	}
	if success := ctx.QueryParam("success"); success != "" {
		b, err := strconv.ParseBool(success)
		if err == nil {
			filter.Success = &b
		}
	}
	if since := ctx.QueryParam("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err == nil {
			filter.CreatedSince = t
		}
	}

	entries, err := api.logSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying export logs")
	}
	if entries == nil {
		entries = []exportlog.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

type TriggerExportRequest struct {
	ConfigID string `json:"config_id"`
}
