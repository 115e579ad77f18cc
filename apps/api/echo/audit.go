package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
)

type auditApi struct {
	svc *audit.Service
}

func registerAuditAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := auditApi{svc: deps.AuditSvc}

	g.GET("/logs", api.query, jwt, adminMiddleware())
}

func (api *auditApi) query(ctx echo.Context) error {
	var filter audit.Filter
	if err := ctx.Bind(&filter); err != nil {
		filter = audit.Filter{}
	}

	entries, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying activity logs")
	}
	if entries == nil {
		entries = []audit.LogEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
