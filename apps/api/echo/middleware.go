package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/activity"
)

// adminMiddleware restricts a route to back-office users, optionally to those
// holding at least one of the given roles.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !claims.IsAdmin || !claims.HasAnyRole(roles...) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// activityMiddleware records every mutating request on the audit trail, with
// the authenticated user attached when a token was presented. Reads are not
// recorded.
func activityMiddleware(svc *activity.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			err := next(ctx)

			switch ctx.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return err
			}

			e := activity.Entry{
				Level:     activity.LevelInfo,
				Action:    ctx.Request().Method + " " + ctx.Path(),
				Message:   fmt.Sprintf("%s %s", ctx.Request().Method, ctx.Request().URL.Path),
				IP:        ctx.RealIP(),
				UserAgent: ctx.Request().UserAgent(),
			}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				e.UserID = claims.Subject
				e.UserEmail = claims.Email
			}
			if err != nil {
				e.Level = activity.LevelWarning
				e.Message = fmt.Sprintf("%s: %v", e.Message, err)
			}
			svc.Record(ctx.Request().Context(), e)
			return err
		}
	}
}
