package tests

import (
	"context"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	. "github.com/trezcool/campus/apps/api/echo"
	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/services/logger"
	"github.com/trezcool/campus/storage/database/inmem"
	"github.com/trezcool/campus/tests"
)

// failingCourseService fails every grade report with err.
type failingCourseService struct {
	course.Service
	err error
}

func (svc failingCourseService) Grades(context.Context, string) (course.GradeReport, error) {
	return course.GradeReport{}, svc.err
}

func newFailingServer(t *testing.T, err error) (*Server, string) {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "API : ", log.LstdFlags), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	app := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    user.NewService(usrRepo),
		CourseSvc:  failingCourseService{err: err},
		Validate:   validate,
		Translator: translator,
	})
	usr := testutil.CreateUser(t, usrRepo, "S001", "Student", "", user.TypeStudent)
	return app, getToken(t, usr)
}

func TestServer_internalErrors(t *testing.T) {
	internalErr := marchallObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)})

	t.Run("internal error", func(t *testing.T) {
		app, token := newFailingServer(t, errors.New("boom"))
		req, rec := newAuthRequest(http.MethodGet, "/api/users/me/grades", token, nil)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusInternalServerError, wantData: internalErr}, rec)

		select {
		case sig := <-app.ShutdownSignal():
			t.Errorf("unexpected shutdown signal %v", sig)
		default:
		}
	})

	t.Run("shutdown error", func(t *testing.T) {
		err := errors.Wrap(core.NewShutdownError("database unreachable"), "beginning transaction")
		app, token := newFailingServer(t, err)
		req, rec := newAuthRequest(http.MethodGet, "/api/users/me/grades", token, nil)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusInternalServerError, wantData: internalErr}, rec)

		select {
		case <-app.ShutdownSignal():
		case <-time.After(time.Second):
			t.Error("server was not asked to shut down")
		}
	})
}
