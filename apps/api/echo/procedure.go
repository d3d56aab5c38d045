package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/procedure"
)

type procedureApi struct {
	svc *procedure.Service
}

func registerProcedureAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *procedure.Service) {
	api := procedureApi{svc: svc}

	pg := g.Group("/procedures", jwt, adminMiddleware())
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *procedureApi) query(ctx echo.Context) error {
	filter := procedure.Filter{Category: ctx.QueryParam("category")}
	if published := ctx.QueryParam("published"); published != "" {
		if b, err := strconv.ParseBool(published); err == nil {
			filter.PublishedOnly = b
		}
	}

	procedures, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying procedures")
	}
	if procedures == nil {
		procedures = []procedure.Procedure{}
	}
	return ctx.JSON(http.StatusOK, procedures)
}

func (api *procedureApi) create(ctx echo.Context) error {
	var data procedure.NewProcedure
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProcedure")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating procedure")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *procedureApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding procedure")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *procedureApi) update(ctx echo.Context) error {
	var data procedure.UpdateProcedure
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProcedure")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating procedure")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *procedureApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding procedure")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting procedure")
	}
	return ctx.NoContent(http.StatusNoContent)
}
