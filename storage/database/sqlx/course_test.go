package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database/sqlx"
	"github.com/trezcool/campus/tests"
)

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewCourseRepository(db)

	teacher := testutil.CreateUser(t, usrRepo, "T001", "Teacher One", "", user.TypeTeacher)
	std1 := testutil.CreateUser(t, usrRepo, "S001", "Student One", "", user.TypeStudent)
	std2 := testutil.CreateUser(t, usrRepo, "S002", "Student Two", "", user.TypeStudent)
	std3 := testutil.CreateUser(t, usrRepo, "S003", "Student Three", "", user.TypeStudent)

	c1 := testutil.CreateCourse(t, repo, teacher, "C001", 1, course.Monday, course.StatusClosed, 2)
	c2 := testutil.CreateCourse(t, repo, teacher, "C002", 2, course.Monday, course.StatusInProgress)
	c3 := testutil.CreateCourse(t, repo, teacher, "C003", 1, course.Friday, course.StatusRegistration)

	t.Run("courses", func(t *testing.T) {
		got, err := repo.GetCourseDetail(ctx, c1.ID)
		require.NoError(t, err)
		assert.Equal(t, course.CourseDetail{Course: c1, Teacher: "Teacher One"}, got)

		_, err = repo.GetCourse(ctx, "unknown")
		assert.Equal(t, course.ErrNotFound, err)

		dup := c1
		dup.ID = core.NewID()
		assert.Equal(t, course.ErrCodeExists, repo.CreateCourse(ctx, dup))

		assert.Equal(t, course.ErrNotFound, repo.UpdateCourseStatus(ctx, "unknown", course.StatusClosed))
	})

	t.Run("search", func(t *testing.T) {
		tests := []struct {
			name   string
			filter course.SearchFilter
			want   []string
		}{
			{name: "all", want: []string{"C001", "C002", "C003"}},
			{name: "day", filter: course.SearchFilter{DayOfWeek: course.Monday}, want: []string{"C001", "C002"}},
			{name: "credit", filter: course.SearchFilter{Credit: 2}, want: []string{"C001"}},
			{name: "teacher", filter: course.SearchFilter{Teacher: "Teacher One", Period: 1}, want: []string{"C001", "C003"}},
			{name: "status", filter: course.SearchFilter{Status: course.StatusRegistration}, want: []string{"C003"}},
			{name: "keywords", filter: course.SearchFilter{Keywords: "Course C00"}, want: []string{"C001", "C002", "C003"}},
			{name: "no match", filter: course.SearchFilter{Keywords: "nope"}, want: []string{}},
			{name: "underscore is literal", filter: course.SearchFilter{Keywords: "C_01"}, want: []string{}},
			{name: "percent is literal", filter: course.SearchFilter{Keywords: "Course%C003"}, want: []string{}},
			{name: "page", filter: course.SearchFilter{Limit: 1, Offset: 1}, want: []string{"C002"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res, err := repo.SearchCourses(ctx, tt.filter)
				require.NoError(t, err)
				codes := make([]string, 0, len(res))
				for _, cd := range res {
					codes = append(codes, cd.Code)
				}
				assert.Equal(t, tt.want, codes)
			})
		}
	})

	t.Run("registrations", func(t *testing.T) {
		testutil.Register(t, repo, std1, c1, c2, c3)
		require.NoError(t, repo.CreateRegistration(ctx, c1.ID, std1.ID), "registering twice is a no-op")
		testutil.Register(t, repo, std2, c1)
		testutil.Register(t, repo, std3, c1) // never submits

		ok, err := repo.IsRegistered(ctx, c1.ID, std1.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.IsRegistered(ctx, c2.ID, std2.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		res, err := repo.QueryRegisteredCourses(ctx, std1.ID, course.StatusClosed, course.StatusRegistration)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, c2.ID, res[0].ID)

		res, err = repo.QueryRegisteredCourses(ctx, std1.ID)
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("classes and scores", func(t *testing.T) {
		cls1 := testutil.CreateClass(t, repo, c1, 1)
		cls2 := testutil.CreateClass(t, repo, c1, 2)
		assert.Equal(t, course.ErrPartExists, repo.CreateClass(ctx, course.Class{ID: core.NewID(), CourseID: c1.ID, Part: 1, Title: "dup"}))

		classes, err := repo.QueryClasses(ctx, c1.ID, core.DBOrdering{Field: "part"})
		require.NoError(t, err)
		require.Len(t, classes, 2)
		assert.Equal(t, cls2.ID, classes[0].ID)

		_, err = repo.QueryClasses(ctx, c1.ID, core.DBOrdering{Field: "id; DROP TABLE classes"})
		assert.Error(t, err)

		testutil.Submit(t, repo, std1, cls1, 80)
		testutil.Submit(t, repo, std1, cls2, 70)
		testutil.Submit(t, repo, std2, cls1)
		testutil.Submit(t, repo, std2, cls1) // resubmitting keeps a single submission

		withSubmitted, err := repo.QueryClassesWithSubmitted(ctx, c1.ID, std2.ID)
		require.NoError(t, err)
		require.Len(t, withSubmitted, 2)
		assert.True(t, withSubmitted[0].Submitted)
		assert.False(t, withSubmitted[1].Submitted)

		count, err := repo.CountSubmissions(ctx, cls1.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		score, err := repo.GetScore(ctx, std2.ID, cls1.ID)
		require.NoError(t, err)
		assert.Nil(t, score)
		score, err = repo.GetScore(ctx, std2.ID, cls2.ID)
		require.NoError(t, err)
		assert.Nil(t, score)
		score, err = repo.GetScore(ctx, std1.ID, cls1.ID)
		require.NoError(t, err)
		require.NotNil(t, score)
		assert.Equal(t, 80, *score)

		testutil.Submit(t, repo, std1, cls1) // a new file keeps the score
		score, err = repo.GetScore(ctx, std1.ID, cls1.ID)
		require.NoError(t, err)
		require.NotNil(t, score)
		assert.Equal(t, 80, *score)

		require.NoError(t, repo.CloseSubmissions(ctx, cls1.ID))
		cls, err := repo.GetClass(ctx, cls1.ID)
		require.NoError(t, err)
		assert.True(t, cls.SubmissionClosed)
		assert.Equal(t, course.ErrClassNotFound, repo.CloseSubmissions(ctx, "unknown"))

		totals, err := repo.QueryCourseTotals(ctx, c1.ID)
		require.NoError(t, err)
		// std2 has an ungraded submission, std3 has no submission at all
		assert.ElementsMatch(t, []int{150, 0, 0}, totals)

		// std1: 150 * 2 credits / 100 / 2 credits; std2 & std3: 0
		gpas, err := repo.QueryStudentGPAs(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []float64{1.5, 0, 0}, gpas)
	})

	t.Run("transaction", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx, &core.TxOptions{Snapshot: true})
		require.NoError(t, err)
		require.NoError(t, tx.UpdateCourseStatus(ctx, c3.ID, course.StatusClosed))
		require.NoError(t, tx.Rollback())
		assert.NoError(t, tx.Rollback(), "rolling back twice is a no-op")

		got, err := repo.GetCourse(ctx, c3.ID)
		require.NoError(t, err)
		assert.Equal(t, course.StatusRegistration, got.Status)

		tx, err = repo.BeginTx(ctx, &core.TxOptions{ReadOnly: true})
		require.NoError(t, err)
		assert.Error(t, tx.UpdateCourseStatus(ctx, c3.ID, course.StatusClosed))
		require.NoError(t, tx.Rollback())
	})
}

func TestCourseRepository_unreachableDB(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.BeginTx(context.Background(), nil)
	assert.True(t, core.IsShutdown(err), "err = %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.BeginTx(ctx, nil)
	assert.Error(t, err)
	assert.False(t, core.IsShutdown(err), "a cancelled request does not shut the API down")
}
