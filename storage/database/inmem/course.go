package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
)

type (
	courseRepository struct {
		store
	}

	courseTx struct {
		store
		*transaction
	}
)

var (
	_ course.Repository = (*courseRepository)(nil) // interface compliance check
	_ course.Tx         = (*courseTx)(nil)
)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{store: store{db: db}}
}

// BeginTx starts a transaction; it blocks until any other transaction ends.
// Every transaction is serializable, so opts are ignored.
func (repo *courseRepository) BeginTx(_ context.Context, _ *core.TxOptions) (course.Tx, error) {
	tx := repo.db.begin()
	return &courseTx{store: store{db: repo.db, tx: tx}, transaction: tx}, nil
}

// ----- courses -----

func (s store) GetCourse(_ context.Context, id string) (course.Course, error) {
	d, done := s.view()
	defer done()

	if c, ok := d.courses[id]; ok {
		return c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (s store) GetCourseForShare(ctx context.Context, id string) (course.Course, error) {
	return s.GetCourse(ctx, id)
}

func (s store) GetCourseByCode(_ context.Context, code string) (course.Course, error) {
	d, done := s.view()
	defer done()

	for _, c := range d.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (s store) GetCourseDetail(_ context.Context, id string) (course.CourseDetail, error) {
	d, done := s.view()
	defer done()

	c, ok := d.courses[id]
	if !ok {
		return course.CourseDetail{}, course.ErrNotFound
	}
	return d.detail(c), nil
}

func (s store) SearchCourses(_ context.Context, filter course.SearchFilter) ([]course.CourseDetail, error) {
	d, done := s.view()
	defer done()

	keywords := filter.KeywordList()
	courses := make([]course.CourseDetail, 0)
	for _, c := range d.courses {
		cd := d.detail(c)
		switch {
		case filter.Type != "" && c.Type != filter.Type,
			filter.Credit > 0 && c.Credit != filter.Credit,
			filter.Teacher != "" && cd.Teacher != filter.Teacher,
			filter.Period > 0 && c.Period != filter.Period,
			filter.DayOfWeek != "" && c.DayOfWeek != filter.DayOfWeek,
			filter.Status != "" && c.Status != filter.Status,
			len(keywords) > 0 && !containsAll(c.Name, keywords) && !containsAll(c.Keywords, keywords):
			continue
		}
		courses = append(courses, cd)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })

	if filter.Offset > 0 {
		if filter.Offset >= len(courses) {
			return courses[:0], nil
		}
		courses = courses[filter.Offset:]
	}
	if filter.Limit > 0 && len(courses) > filter.Limit {
		courses = courses[:filter.Limit]
	}
	return courses, nil
}

func (s store) CreateCourse(_ context.Context, c course.Course) error {
	d, done := s.view()
	defer done()

	for _, other := range d.courses {
		if other.Code == c.Code {
			return course.ErrCodeExists
		}
	}
	d.courses[c.ID] = c
	return nil
}

func (s store) UpdateCourseStatus(_ context.Context, id string, status course.Status) error {
	d, done := s.view()
	defer done()

	c, ok := d.courses[id]
	if !ok {
		return course.ErrNotFound
	}
	c.Status = status
	d.courses[id] = c
	return nil
}

// ----- registrations -----

func (s store) IsRegistered(_ context.Context, courseID, userID string) (bool, error) {
	d, done := s.view()
	defer done()

	_, ok := d.registrations[registrationKey{courseID: courseID, userID: userID}]
	return ok, nil
}

func (s store) QueryRegisteredCourses(_ context.Context, userID string, excludedStatuses ...course.Status) ([]course.CourseDetail, error) {
	d, done := s.view()
	defer done()

	courses := make([]course.CourseDetail, 0)
	for key := range d.registrations {
		if key.userID != userID {
			continue
		}
		c := d.courses[key.courseID]
		if hasStatus(c, excludedStatuses) {
			continue
		}
		courses = append(courses, d.detail(c))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (s store) CreateRegistration(_ context.Context, courseID, userID string) error {
	d, done := s.view()
	defer done()

	d.registrations[registrationKey{courseID: courseID, userID: userID}] = struct{}{}
	return nil
}

// ----- classes -----

func (s store) GetClass(_ context.Context, id string) (course.Class, error) {
	d, done := s.view()
	defer done()

	if cls, ok := d.classes[id]; ok {
		return cls, nil
	}
	return course.Class{}, course.ErrClassNotFound
}

func (s store) GetClassForShare(ctx context.Context, id string) (course.Class, error) {
	return s.GetClass(ctx, id)
}

func (s store) GetClassByPart(_ context.Context, courseID string, part int) (course.Class, error) {
	d, done := s.view()
	defer done()

	for _, cls := range d.classes {
		if cls.CourseID == courseID && cls.Part == part {
			return cls, nil
		}
	}
	return course.Class{}, course.ErrClassNotFound
}

func (s store) QueryClasses(_ context.Context, courseID string, ordering core.DBOrdering) ([]course.Class, error) {
	d, done := s.view()
	defer done()

	var less func(a, b course.Class) bool
	switch ordering.Field {
	case "part":
		less = func(a, b course.Class) bool { return a.Part < b.Part }
	case "title":
		less = func(a, b course.Class) bool { return a.Title < b.Title }
	default:
		return nil, errors.Errorf("cannot order classes by %q", ordering.Field)
	}

	classes := d.courseClasses(courseID)
	sort.SliceStable(classes, func(i, j int) bool {
		if ordering.Ascending {
			return less(classes[i], classes[j])
		}
		return less(classes[j], classes[i])
	})
	return classes, nil
}

func (s store) QueryClassesWithSubmitted(_ context.Context, courseID, userID string) ([]course.ClassWithSubmitted, error) {
	d, done := s.view()
	defer done()

	classes := d.courseClasses(courseID)
	res := make([]course.ClassWithSubmitted, 0, len(classes))
	for _, cls := range classes {
		_, submitted := d.submissions[submissionKey{userID: userID, classID: cls.ID}]
		res = append(res, course.ClassWithSubmitted{Class: cls, Submitted: submitted})
	}
	return res, nil
}

func (s store) CreateClass(_ context.Context, cls course.Class) error {
	d, done := s.view()
	defer done()

	for _, other := range d.classes {
		if other.CourseID == cls.CourseID && other.Part == cls.Part {
			return course.ErrPartExists
		}
	}
	d.classes[cls.ID] = cls
	return nil
}

func (s store) CloseSubmissions(_ context.Context, classID string) error {
	d, done := s.view()
	defer done()

	cls, ok := d.classes[classID]
	if !ok {
		return course.ErrClassNotFound
	}
	cls.SubmissionClosed = true
	d.classes[classID] = cls
	return nil
}

// ----- submissions -----

func (s store) CountSubmissions(_ context.Context, classID string) (int, error) {
	d, done := s.view()
	defer done()

	var count int
	for key := range d.submissions {
		if key.classID == classID {
			count++
		}
	}
	return count, nil
}

func (s store) GetScore(_ context.Context, userID, classID string) (*int, error) {
	d, done := s.view()
	defer done()

	sub, ok := d.submissions[submissionKey{userID: userID, classID: classID}]
	if !ok || sub.Score == nil {
		return nil, nil
	}
	score := *sub.Score
	return &score, nil
}

func (s store) UpsertSubmission(_ context.Context, sub course.Submission) error {
	d, done := s.view()
	defer done()

	key := submissionKey{userID: sub.UserID, classID: sub.ClassID}
	if prev, ok := d.submissions[key]; ok {
		prev.FileName = sub.FileName
		sub = prev
	}
	d.submissions[key] = sub
	return nil
}

func (s store) UpdateScore(_ context.Context, classID, userCode string, score int) error {
	d, done := s.view()
	defer done()

	for _, usr := range d.users {
		if usr.Code != userCode {
			continue
		}
		key := submissionKey{userID: usr.ID, classID: classID}
		if sub, ok := d.submissions[key]; ok {
			sub.Score = &score
			d.submissions[key] = sub
		}
		break
	}
	return nil
}

// ----- aggregates -----

func (s store) QueryCourseTotals(_ context.Context, courseID string) ([]int, error) {
	d, done := s.view()
	defer done()

	classes := d.courseClasses(courseID)
	totals := make([]int, 0)
	for key := range d.registrations {
		if key.courseID != courseID {
			continue
		}
		totals = append(totals, d.totalScore(key.userID, classes))
	}
	return totals, nil
}

func (s store) QueryStudentGPAs(_ context.Context) ([]float64, error) {
	d, done := s.view()
	defer done()

	type acc struct{ weighted, credits int }
	accs := make(map[string]*acc)
	for key := range d.registrations {
		c := d.courses[key.courseID]
		if c.Status != course.StatusClosed || d.users[key.userID].Type != user.TypeStudent {
			continue
		}
		a, ok := accs[key.userID]
		if !ok {
			a = new(acc)
			accs[key.userID] = a
		}
		a.weighted += d.totalScore(key.userID, d.courseClasses(c.ID)) * c.Credit
		a.credits += c.Credit
	}

	gpas := make([]float64, 0, len(accs))
	for _, a := range accs {
		gpas = append(gpas, float64(a.weighted)/100/float64(a.credits))
	}
	return gpas, nil
}

// ----- helpers -----

func (d *dataset) detail(c course.Course) course.CourseDetail {
	return course.CourseDetail{Course: c, Teacher: d.users[c.TeacherID].Name}
}

// courseClasses returns the classes of the course by ascending part.
func (d *dataset) courseClasses(courseID string) []course.Class {
	classes := make([]course.Class, 0)
	for _, cls := range d.classes {
		if cls.CourseID == courseID {
			classes = append(classes, cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Part < classes[j].Part })
	return classes
}

func (d *dataset) totalScore(userID string, classes []course.Class) int {
	var total int
	for _, cls := range classes {
		if sub, ok := d.submissions[submissionKey{userID: userID, classID: cls.ID}]; ok && sub.Score != nil {
			total += *sub.Score
		}
	}
	return total
}

func hasStatus(c course.Course, statuses []course.Status) bool {
	for _, st := range statuses {
		if c.Status == st {
			return true
		}
	}
	return false
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
