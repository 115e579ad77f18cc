package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

type surveyApi struct {
	svc      *survey.Service
	validate *validator.Validate
}

func registerSurveyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := surveyApi{svc: deps.SurveySvc, validate: deps.Validate}

	// reads are available to any authenticated account, writes to admins only
	cg := g.Group("/categories", jwt)
	cg.GET("", api.queryCategories)
	cg.POST("", api.createCategory, adminMiddleware())
	cg.PUT("/:id", api.updateCategory, adminMiddleware())
	cg.DELETE("/:id", api.destroyCategory, adminMiddleware())

	sg := g.Group("/segments", jwt)
	sg.GET("", api.querySegments)
	sg.POST("", api.createSegment, adminMiddleware())
	sg.PUT("/:id", api.updateSegment, adminMiddleware())
	sg.DELETE("/:id", api.destroySegment, adminMiddleware())

	qg := g.Group("/questions", jwt)
	qg.GET("", api.queryQuestions)
	qg.GET("/:id", api.retrieveQuestion)
	qg.POST("", api.createQuestion, adminMiddleware())
	qg.PUT("/:id", api.updateQuestion, adminMiddleware())
	qg.DELETE("/:id", api.destroyQuestion, adminMiddleware())
}

// Categories

func (api *surveyApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []survey.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *surveyApi) createCategory(ctx echo.Context) error {
	var data survey.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *surveyApi) updateCategory(ctx echo.Context) error {
	var data survey.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == survey.ErrCategoryNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *surveyApi) destroyCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == survey.ErrCategoryNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Segments

func (api *surveyApi) querySegments(ctx echo.Context) error {
	segs, err := api.svc.QuerySegments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying segments")
	}
	if segs == nil {
		segs = []survey.Segment{}
	}
	return ctx.JSON(http.StatusOK, segs)
}

func (api *surveyApi) createSegment(ctx echo.Context) error {
	var data survey.NewSegment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSegment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	seg, err := api.svc.CreateSegment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating segment")
	}
	return ctx.JSON(http.StatusCreated, seg)
}

func (api *surveyApi) updateSegment(ctx echo.Context) error {
	var data survey.NewSegment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSegment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	seg, err := api.svc.UpdateSegment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == survey.ErrSegmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating segment")
	}
	return ctx.JSON(http.StatusOK, seg)
}

func (api *surveyApi) destroySegment(ctx echo.Context) error {
	if err := api.svc.DeleteSegment(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == survey.ErrSegmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting segment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *surveyApi) queryQuestions(ctx echo.Context) error {
	filter := new(survey.QuestionFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(survey.QuestionFilter)
	}
	filter.Clean()

	questions, err := api.svc.QueryQuestions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []survey.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *surveyApi) retrieveQuestion(ctx echo.Context) error {
	question, err := api.svc.GetQuestion(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == survey.ErrQuestionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding question")
	}
	return ctx.JSON(http.StatusOK, question)
}

func (api *surveyApi) createQuestion(ctx echo.Context) error {
	var data survey.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	question, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, question)
}

func (api *surveyApi) updateQuestion(ctx echo.Context) error {
	var data survey.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	question, err := api.svc.UpdateQuestion(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == survey.ErrQuestionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, question)
}

func (api *surveyApi) destroyQuestion(ctx echo.Context) error {
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == survey.ErrQuestionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
