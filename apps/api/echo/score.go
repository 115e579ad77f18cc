package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
	reportsvc "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/services/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type scoreApi struct {
	svc      *score.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerScoreAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := scoreApi{svc: deps.ScoreSvc, usrSvc: deps.UserSvc, validate: deps.Validate}

	sg := g.Group("/submissions", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)

	g.GET("/maturity-levels", api.queryMaturityLevels)

	cg := g.Group("/compare", jwt, roleMiddleware(user.RoleCompany, user.RoleGroup))
	cg.POST("", api.compare)
	cg.POST("/export", api.export)
}

func (api *scoreApi) create(ctx echo.Context) error {
	var data score.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *scoreApi) query(ctx echo.Context) error {
	filter := new(score.SubmissionFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(score.SubmissionFilter)
	}
	filter.Clean()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	subs, err := api.svc.Query(ctx.Request().Context(), ctxUsr, filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []score.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *scoreApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == score.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding submission")
	}

	// a submission is visible to its author, to admins and to accounts
	// whose scope covers the author's company
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !canViewSubmission(ctxUsr, sub) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sub)
}

func canViewSubmission(usr user.User, sub score.Submission) bool {
	switch {
	case usr.IsAdmin():
		return true
	case usr.ID == sub.UserID:
		return true
	case usr.IsCompany():
		return usr.CompanyName == sub.CompanyName
	case usr.IsGroup():
		for _, name := range usr.ManagedCompanies {
			if name == sub.CompanyName {
				return true
			}
		}
	}
	return false
}

func (api *scoreApi) queryMaturityLevels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, score.MaturityLevels())
}

func (api *scoreApi) compare(ctx echo.Context) error {
	result, err := api.runComparison(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}

// export runs the same comparison as compare but streams it out as an
// xlsx workbook instead of JSON.
func (api *scoreApi) export(ctx echo.Context) error {
	result, err := api.runComparison(ctx)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("comparativo-%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	ctx.Response().WriteHeader(http.StatusOK)
	return errors.Wrap(reportsvc.WriteComparison(ctx.Response(), result), "writing comparison workbook")
}

func (api *scoreApi) runComparison(ctx echo.Context) (*score.AggregationResult, error) {
	var data score.CompareRequest
	if err := ctx.Bind(&data); err != nil {
		return nil, errors.Wrap(err, "binding to CompareRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return nil, err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return nil, errors.Wrap(err, "getting context user")
	}

	result, err := api.svc.Compare(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return nil, errors.Wrap(err, "comparing entities")
	}
	return result, nil
}
