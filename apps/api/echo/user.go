package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
)

type userApi struct {
	conf      *core.Config
	svc       user.Service
	courseSvc course.Service
	validate  *validator.Validate
}

func registerUserAPI(
	app *echo.Echo,
	jwt echo.MiddlewareFunc,
	svc user.Service,
	courseSvc course.Service,
	conf *core.Config,
	validate *validator.Validate,
) {
	api := userApi{
		conf:      conf,
		svc:       svc,
		courseSvc: courseSvc,
		validate:  validate,
	}

	// un-authed endpoints
	app.POST("/login", api.login)

	// authed endpoints
	ug := app.Group("/api/users", jwt)
	ug.POST("", api.create, adminMiddleware())
	ug.GET("/me", api.me)
	ug.GET("/me/courses", api.registeredCourses)
	ug.PUT("/me/courses", api.registerCourses)
	ug.GET("/me/grades", api.grades)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidFormat
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Code, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errInvalidFormat
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, MeResponse{Code: usr.Code, Name: usr.Name, IsAdmin: usr.IsAdmin()})
}

func (api *userApi) registeredCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	courses, err := api.courseSvc.RegisteredCourses(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying registered courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *userApi) registerCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data []RegisterCourseRequest
	if err = new(echo.DefaultBinder).BindBody(ctx, &data); err != nil {
		return errInvalidFormat
	}
	ids := make([]string, 0, len(data))
	for i := range data {
		if err = api.validate.Struct(&data[i]); err != nil {
			return errInvalidFormat
		}
		ids = append(ids, data[i].ID)
	}

	if err = api.courseSvc.RegisterCourses(ctx.Request().Context(), claims.Subject, ids); err != nil {
		return errors.Wrap(err, "registering courses")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *userApi) grades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	report, err := api.courseSvc.Grades(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing grades")
	}
	return ctx.JSON(http.StatusOK, report)
}

type (
	LoginRequest struct {
		Code     string `json:"code" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	MeResponse struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"is_admin"`
	}

	RegisterCourseRequest struct {
		ID string `json:"id" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Code = core.CleanString(lr.Code)
	return validate.Struct(lr)
}
