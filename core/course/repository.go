package course

import (
	"context"

	"github.com/trezcool/campus/core"
)

type (
	// Store is the query surface over courses, registrations, classes and submissions.
	// Lookups of a single row return ErrNotFound / ErrClassNotFound when it does not exist.
	Store interface {
		GetCourse(ctx context.Context, id string) (Course, error)
		// GetCourseForShare reads the course holding a shared lock on its row until the transaction ends.
		GetCourseForShare(ctx context.Context, id string) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
		GetCourseDetail(ctx context.Context, id string) (CourseDetail, error)
		SearchCourses(ctx context.Context, filter SearchFilter) ([]CourseDetail, error)
		// CreateCourse returns ErrCodeExists when the code is taken.
		CreateCourse(ctx context.Context, c Course) error
		UpdateCourseStatus(ctx context.Context, id string, status Status) error

		IsRegistered(ctx context.Context, courseID, userID string) (bool, error)
		// QueryRegisteredCourses returns the user's registered courses, except those in excludedStatuses.
		QueryRegisteredCourses(ctx context.Context, userID string, excludedStatuses ...Status) ([]CourseDetail, error)
		// CreateRegistration is a no-op when the registration already exists.
		CreateRegistration(ctx context.Context, courseID, userID string) error

		GetClass(ctx context.Context, id string) (Class, error)
		GetClassForShare(ctx context.Context, id string) (Class, error)
		GetClassByPart(ctx context.Context, courseID string, part int) (Class, error)
		QueryClasses(ctx context.Context, courseID string, ordering core.DBOrdering) ([]Class, error)
		QueryClassesWithSubmitted(ctx context.Context, courseID, userID string) ([]ClassWithSubmitted, error)
		// CreateClass returns ErrPartExists when the course already has a class with the same part.
		CreateClass(ctx context.Context, cls Class) error
		CloseSubmissions(ctx context.Context, classID string) error

		CountSubmissions(ctx context.Context, classID string) (int, error)
		// GetScore returns nil when the user has no graded submission for the class.
		GetScore(ctx context.Context, userID, classID string) (*int, error)
		UpsertSubmission(ctx context.Context, sub Submission) error
		UpdateScore(ctx context.Context, classID, userCode string, score int) error

		// QueryCourseTotals returns, for every user registered to the course, the sum of their scores
		// over the course's classes (0 when none).
		QueryCourseTotals(ctx context.Context, courseID string) ([]int, error)
		// QueryStudentGPAs returns the GPA of every student registered to at least one closed course.
		QueryStudentGPAs(ctx context.Context) ([]float64, error)
	}

	Tx interface {
		Store
		core.Transactor
	}

	Repository interface {
		Store
		BeginTx(ctx context.Context, opts *core.TxOptions) (Tx, error)
	}
)

// partDesc orders classes from the most recent part.
var partDesc = core.DBOrdering{Field: "part", Ascending: false}
