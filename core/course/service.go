package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

type (
	Service interface {
		// RegisterCourses registers the student to every course of courseIDs, or to none of them.
		// Business rule violations are reported together as a *RegistrationError.
		RegisterCourses(ctx context.Context, userID string, courseIDs []string) error
		// Grades computes the grade report of the student.
		Grades(ctx context.Context, userID string) (GradeReport, error)
		RegisteredCourses(ctx context.Context, userID string) ([]RegisteredCourse, error)

		Create(ctx context.Context, teacherID string, nc NewCourse) (string, error)
		GetDetail(ctx context.Context, id string) (CourseDetail, error)
		// Search returns a page of courses ordered by code, and whether a next page exists.
		Search(ctx context.Context, filter SearchFilter) ([]CourseDetail, bool, error)
		SetStatus(ctx context.Context, id string, status Status) error

		Classes(ctx context.Context, courseID, userID string) ([]ClassWithSubmitted, error)
		AddClass(ctx context.Context, courseID string, nc NewClass) (string, error)
		SubmitAssignment(ctx context.Context, userID, courseID, classID, fileName string) error
		CloseSubmissions(ctx context.Context, courseID, classID string) error
		// RegisterScores grades the submissions of a closed class; scores of users without submission are ignored.
		RegisterScores(ctx context.Context, courseID, classID string, scores []Score) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// inTx runs fn inside a new transaction; the transaction is committed only if fn succeeds.
func (svc *service) inTx(ctx context.Context, opts *core.TxOptions, fn func(tx Tx) error) error {
	tx, err := svc.repo.BeginTx(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
