package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/course"
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc course.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	g.GET("", api.search)
	g.POST("", api.create, adminMiddleware())

	// detail endpoints
	dg := g.Group("/:courseID")
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.setStatus, adminMiddleware())
	dg.GET("/classes", api.classes)
	dg.POST("/classes", api.addClass, adminMiddleware())
	dg.POST("/classes/:classID/assignments", api.submitAssignment)
	dg.PUT("/classes/:classID/assignments/close", api.closeSubmissions, adminMiddleware())
	dg.PUT("/classes/:classID/assignments/scores", api.registerScores, adminMiddleware())
}

// Handlers

func (api *courseApi) search(ctx echo.Context) error {
	var pagination Pagination
	if err := pagination.Bind(ctx); err != nil {
		return err
	}
	filter := bindSearchFilter(ctx)
	filter.Limit = pagination.Limit()
	filter.Offset = pagination.Offset()

	courses, hasNext, err := api.svc.Search(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "searching courses")
	}
	pagination.SetLinkHeader(ctx, hasNext)
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errInvalidFormat
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetDetail(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) setStatus(ctx echo.Context) error {
	var data course.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errInvalidFormat
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("courseID"), data.Status); err != nil {
		return errors.Wrap(err, "setting course status")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *courseApi) classes(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	classes, err := api.svc.Classes(ctx.Request().Context(), ctx.Param("courseID"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *courseApi) addClass(ctx echo.Context) error {
	var data course.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errInvalidFormat
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.AddClass(ctx.Request().Context(), ctx.Param("courseID"), data)
	if err != nil {
		return errors.Wrap(err, "adding class")
	}
	return ctx.JSON(http.StatusCreated, ClassIDResponse{ClassID: id})
}

func (api *courseApi) submitAssignment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return errInvalidFile
	}

	err = api.svc.SubmitAssignment(
		ctx.Request().Context(), claims.Subject, ctx.Param("courseID"), ctx.Param("classID"), file.Filename,
	)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) closeSubmissions(ctx echo.Context) error {
	err := api.svc.CloseSubmissions(ctx.Request().Context(), ctx.Param("courseID"), ctx.Param("classID"))
	if err != nil {
		return errors.Wrap(err, "closing submissions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) registerScores(ctx echo.Context) error {
	var data []course.Score
	if err := new(echo.DefaultBinder).BindBody(ctx, &data); err != nil {
		return errInvalidFormat
	}
	for i := range data {
		if err := api.validate.Struct(&data[i]); err != nil {
			return err
		}
	}

	err := api.svc.RegisterScores(ctx.Request().Context(), ctx.Param("courseID"), ctx.Param("classID"), data)
	if err != nil {
		return errors.Wrap(err, "registering scores")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	IDResponse struct {
		ID string `json:"id"`
	}

	ClassIDResponse struct {
		ClassID string `json:"class_id"`
	}
)
