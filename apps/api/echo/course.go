package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", jwt, adminMiddleware())
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.POST("/reorder", api.reorder)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)

	// export configurations subresource
	cg.POST("/:id/export-configs", api.createConfig)
	cg.PUT("/:id/export-configs/:cfgID", api.updateConfig)
	cg.DELETE("/:id/export-configs/:cfgID", api.destroyConfig)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding course")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) reorder(ctx echo.Context) error {
	var data course.ReorderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.Reorder(ctx.Request().Context(), data.IDs); err != nil {
		return errors.Wrap(err, "reordering courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createConfig(ctx echo.Context) error {
	var data course.NewExportConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExportConfig")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cfg, err := api.svc.AddExportConfig(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating export config")
	}
	return ctx.JSON(http.StatusCreated, cfg)
}

func (api *courseApi) updateConfig(ctx echo.Context) error {
	var data course.NewExportConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExportConfig")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cfg, err := api.svc.UpdateExportConfig(ctx.Request().Context(), ctx.Param("id"), ctx.Param("cfgID"), data)
	if err != nil {
		return errors.Wrap(err, "updating export config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *courseApi) destroyConfig(ctx echo.Context) error {
	if err := api.svc.DeleteExportConfig(ctx.Request().Context(), ctx.Param("id"), ctx.Param("cfgID")); err != nil {
		return errors.Wrap(err, "deleting export config")
	}
	return ctx.NoContent(http.StatusNoContent)
}
