package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/group"
)

type groupApi struct {
	svc      *group.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := groupApi{svc: deps.GroupSvc, validate: deps.Validate}

	// group management is admin-only; the group account itself interacts
	// through the compare and submissions endpoints
	gg := g.Group("/groups", jwt, adminMiddleware())
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
	gg.POST("/:id/companies", api.addCompany)
	gg.DELETE("/:id/companies", api.removeCompany)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type GroupCompanyRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
}

func (gc *GroupCompanyRequest) Validate(validate *validator.Validate) error {
	gc.CompanyName = core.CleanString(gc.CompanyName)
	return validate.Struct(gc)
}

func (api *groupApi) addCompany(ctx echo.Context) error {
	var data GroupCompanyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupCompanyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.AddCompany(ctx.Request().Context(), ctx.Param("id"), data.CompanyName)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding company to group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) removeCompany(ctx echo.Context) error {
	var data GroupCompanyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupCompanyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.RemoveCompany(ctx.Request().Context(), ctx.Param("id"), data.CompanyName)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing company from group")
	}
	return ctx.JSON(http.StatusOK, grp)
}
