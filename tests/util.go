package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database"
)

// PrepareDB opens the postgres database at TEST_DATABASE_URL, migrates and empties it.
// The test is skipped when TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.OpenURL(dbURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE submissions, classes, registrations, courses, users CASCADE"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, code, name, pwd string, typ user.Type) user.User {
	t.Helper()
	usr := user.User{
		ID:   core.NewID(),
		Code: code,
		Name: name,
		Type: typ,
	}
	if pwd == "" {
		pwd = "password"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse creates a 1-credit course, held on day at period.
func CreateCourse(
	t *testing.T,
	repo course.Repository,
	teacher user.User,
	code string,
	period int,
	day course.DayOfWeek,
	status course.Status,
	credit ...int,
) course.Course {
	t.Helper()
	c := course.Course{
		ID:        core.NewID(),
		Code:      code,
		Type:      course.TypeMajorSubjects,
		Name:      "Course " + code,
		Credit:    1,
		Period:    period,
		DayOfWeek: day,
		TeacherID: teacher.ID,
		Status:    status,
	}
	if len(credit) > 0 {
		c.Credit = credit[0]
	}
	if err := repo.CreateCourse(context.Background(), c); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateClass(t *testing.T, repo course.Repository, c course.Course, part int) course.Class {
	t.Helper()
	cls := course.Class{
		ID:       core.NewID(),
		CourseID: c.ID,
		Part:     part,
		Title:    c.Name + " part",
	}
	if err := repo.CreateClass(context.Background(), cls); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func Register(t *testing.T, repo course.Repository, usr user.User, courses ...course.Course) {
	t.Helper()
	for _, c := range courses {
		if err := repo.CreateRegistration(context.Background(), c.ID, usr.ID); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
	}
}

// Submit submits an assignment of usr for cls, graded with score when set.
func Submit(t *testing.T, repo course.Repository, usr user.User, cls course.Class, score ...int) {
	t.Helper()
	ctx := context.Background()
	sub := course.Submission{UserID: usr.ID, ClassID: cls.ID, FileName: usr.Code + ".pdf"}
	if err := repo.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if len(score) > 0 {
		if err := repo.UpdateScore(ctx, cls.ID, usr.Code, score[0]); err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
	}
}
