package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// classOrderings whitelists the columns classes can be ordered by.
var classOrderings = map[string]string{
	"part":  "classes.part",
	"title": "classes.title",
}

// likeEscaper makes search keywords match literally in LIKE patterns (backslash is the default escape).
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const courseDetailQuery = `SELECT courses.*, users.name AS teacher FROM courses JOIN users ON courses.teacher_id = users.id`

type (
	// store runs queries on either the DB or a transaction.
	store struct {
		exec sqlx.ExtContext
	}

	courseRepository struct {
		store
		conn *sqlx.DB
	}

	transaction struct {
		*sqlx.Tx
	}

	courseTx struct {
		store
		transaction
	}
)

var (
	_ course.Repository = (*courseRepository)(nil) // interface compliance check
	_ course.Tx         = (*courseTx)(nil)
)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{store: store{exec: db}, conn: db}
}

func (repo *courseRepository) BeginTx(ctx context.Context, opts *core.TxOptions) (course.Tx, error) {
	txOpts := new(sql.TxOptions)
	if opts != nil {
		txOpts.ReadOnly = opts.ReadOnly
		if opts.Snapshot {
			txOpts.Isolation = sql.LevelRepeatableRead
		}
	}
	tx, err := repo.conn.BeginTxx(ctx, txOpts)
	if err != nil {
		// an unreachable database shuts the API down
		if ctx.Err() == nil {
			if pErr := repo.conn.PingContext(ctx); pErr != nil {
				return nil, core.NewShutdownError(fmt.Sprintf("database unreachable: %v", pErr))
			}
		}
		return nil, err
	}
	return &courseTx{store: store{exec: tx}, transaction: transaction{tx}}, nil
}

func (tx transaction) Rollback() error {
	if err := tx.Tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

func (s store) get(ctx context.Context, dest interface{}, notFound error, query string, args ...interface{}) error {
	if err := sqlx.GetContext(ctx, s.exec, dest, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return notFound
		}
		return err
	}
	return nil
}

// ----- courses -----

func (s store) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	err := s.get(ctx, &c, course.ErrNotFound, "SELECT * FROM courses WHERE id = $1", id)
	return c, err
}

func (s store) GetCourseForShare(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	err := s.get(ctx, &c, course.ErrNotFound, "SELECT * FROM courses WHERE id = $1 FOR SHARE", id)
	return c, err
}

func (s store) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	var c course.Course
	err := s.get(ctx, &c, course.ErrNotFound, "SELECT * FROM courses WHERE code = $1", code)
	return c, err
}

func (s store) GetCourseDetail(ctx context.Context, id string) (course.CourseDetail, error) {
	var cd course.CourseDetail
	err := s.get(ctx, &cd, course.ErrNotFound, courseDetailQuery+" WHERE courses.id = $1", id)
	return cd, err
}

func (s store) SearchCourses(ctx context.Context, filter course.SearchFilter) ([]course.CourseDetail, error) {
	q := psql.
		Select("courses.*", "users.name AS teacher").
		From("courses").
		Join("users ON courses.teacher_id = users.id").
		OrderBy("courses.code")

	if filter.Type != "" {
		q = q.Where(sq.Eq{"courses.type": string(filter.Type)})
	}
	if filter.Credit > 0 {
		q = q.Where(sq.Eq{"courses.credit": filter.Credit})
	}
	if filter.Teacher != "" {
		q = q.Where(sq.Eq{"users.name": filter.Teacher})
	}
	if filter.Period > 0 {
		q = q.Where(sq.Eq{"courses.period": filter.Period})
	}
	if filter.DayOfWeek != "" {
		q = q.Where(sq.Eq{"courses.day_of_week": string(filter.DayOfWeek)})
	}
	if keywords := filter.KeywordList(); len(keywords) > 0 {
		// every keyword must be found, either in the name or in the keywords
		inName, inKeywords := sq.And{}, sq.And{}
		for _, kw := range keywords {
			pattern := "%" + likeEscaper.Replace(kw) + "%"
			inName = append(inName, sq.Like{"courses.name": pattern})
			inKeywords = append(inKeywords, sq.Like{"courses.keywords": pattern})
		}
		q = q.Where(sq.Or{inName, inKeywords})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"courses.status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	courses := make([]course.CourseDetail, 0)
	err = sqlx.SelectContext(ctx, s.exec, &courses, query, args...)
	return courses, errors.Wrap(err, "selecting courses")
}

func (s store) CreateCourse(ctx context.Context, c course.Course) error {
	const q = `INSERT INTO courses (id, code, type, name, description, credit, period, day_of_week, teacher_id, keywords, status)
		VALUES (:id, :code, :type, :name, :description, :credit, :period, :day_of_week, :teacher_id, :keywords, :status)`
	if _, err := sqlx.NamedExecContext(ctx, s.exec, q, c); err != nil {
		if database.IsUniqueViolation(err) {
			return course.ErrCodeExists
		}
		return errors.Wrap(err, "inserting course")
	}
	return nil
}

func (s store) UpdateCourseStatus(ctx context.Context, id string, status course.Status) error {
	res, err := s.exec.ExecContext(ctx, "UPDATE courses SET status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

// ----- registrations -----

func (s store) IsRegistered(ctx context.Context, courseID, userID string) (bool, error) {
	var registered bool
	err := sqlx.GetContext(ctx, s.exec, &registered,
		"SELECT EXISTS (SELECT 1 FROM registrations WHERE course_id = $1 AND user_id = $2)", courseID, userID)
	return registered, errors.Wrap(err, "selecting registration")
}

func (s store) QueryRegisteredCourses(ctx context.Context, userID string, excludedStatuses ...course.Status) ([]course.CourseDetail, error) {
	q := psql.
		Select("courses.*", "users.name AS teacher").
		From("registrations").
		Join("courses ON registrations.course_id = courses.id").
		Join("users ON courses.teacher_id = users.id").
		Where(sq.Eq{"registrations.user_id": userID}).
		OrderBy("courses.id")
	if len(excludedStatuses) > 0 {
		statuses := make([]string, 0, len(excludedStatuses))
		for _, st := range excludedStatuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where(sq.NotEq{"courses.status": statuses})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	courses := make([]course.CourseDetail, 0)
	err = sqlx.SelectContext(ctx, s.exec, &courses, query, args...)
	return courses, errors.Wrap(err, "selecting registered courses")
}

func (s store) CreateRegistration(ctx context.Context, courseID, userID string) error {
	_, err := s.exec.ExecContext(ctx,
		"INSERT INTO registrations (course_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", courseID, userID)
	return errors.Wrap(err, "inserting registration")
}

// ----- classes -----

func (s store) GetClass(ctx context.Context, id string) (course.Class, error) {
	var cls course.Class
	err := s.get(ctx, &cls, course.ErrClassNotFound, "SELECT * FROM classes WHERE id = $1", id)
	return cls, err
}

func (s store) GetClassForShare(ctx context.Context, id string) (course.Class, error) {
	var cls course.Class
	err := s.get(ctx, &cls, course.ErrClassNotFound, "SELECT * FROM classes WHERE id = $1 FOR SHARE", id)
	return cls, err
}

func (s store) GetClassByPart(ctx context.Context, courseID string, part int) (course.Class, error) {
	var cls course.Class
	err := s.get(ctx, &cls, course.ErrClassNotFound, "SELECT * FROM classes WHERE course_id = $1 AND part = $2", courseID, part)
	return cls, err
}

func (s store) QueryClasses(ctx context.Context, courseID string, ordering core.DBOrdering) ([]course.Class, error) {
	col, ok := classOrderings[ordering.Field]
	if !ok {
		return nil, errors.Errorf("cannot order classes by %q", ordering.Field)
	}
	ordering.Field = col

	query, args, err := psql.
		Select("*").
		From("classes").
		Where(sq.Eq{"course_id": courseID}).
		OrderBy(ordering.String()).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	classes := make([]course.Class, 0)
	err = sqlx.SelectContext(ctx, s.exec, &classes, query, args...)
	return classes, errors.Wrap(err, "selecting classes")
}

func (s store) QueryClassesWithSubmitted(ctx context.Context, courseID, userID string) ([]course.ClassWithSubmitted, error) {
	const q = `SELECT classes.*, submissions.user_id IS NOT NULL AS submitted
		FROM classes
		LEFT JOIN submissions ON classes.id = submissions.class_id AND submissions.user_id = $2
		WHERE classes.course_id = $1
		ORDER BY classes.part`
	classes := make([]course.ClassWithSubmitted, 0)
	err := sqlx.SelectContext(ctx, s.exec, &classes, q, courseID, userID)
	return classes, errors.Wrap(err, "selecting classes")
}

func (s store) CreateClass(ctx context.Context, cls course.Class) error {
	const q = `INSERT INTO classes (id, course_id, part, title, description, submission_closed)
		VALUES (:id, :course_id, :part, :title, :description, :submission_closed)`
	if _, err := sqlx.NamedExecContext(ctx, s.exec, q, cls); err != nil {
		if database.IsUniqueViolation(err) {
			return course.ErrPartExists
		}
		return errors.Wrap(err, "inserting class")
	}
	return nil
}

func (s store) CloseSubmissions(ctx context.Context, classID string) error {
	res, err := s.exec.ExecContext(ctx, "UPDATE classes SET submission_closed = true WHERE id = $1", classID)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrClassNotFound
	}
	return nil
}

// ----- submissions -----

func (s store) CountSubmissions(ctx context.Context, classID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.exec, &count, "SELECT COUNT(*) FROM submissions WHERE class_id = $1", classID)
	return count, errors.Wrap(err, "counting submissions")
}

func (s store) GetScore(ctx context.Context, userID, classID string) (*int, error) {
	var score sql.NullInt64
	err := sqlx.GetContext(ctx, s.exec, &score,
		"SELECT score FROM submissions WHERE user_id = $1 AND class_id = $2", userID, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "selecting score")
	}
	if !score.Valid {
		return nil, nil
	}
	v := int(score.Int64)
	return &v, nil
}

func (s store) UpsertSubmission(ctx context.Context, sub course.Submission) error {
	const q = `INSERT INTO submissions (user_id, class_id, file_name) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, class_id) DO UPDATE SET file_name = EXCLUDED.file_name`
	_, err := s.exec.ExecContext(ctx, q, sub.UserID, sub.ClassID, sub.FileName)
	return errors.Wrap(err, "upserting submission")
}

func (s store) UpdateScore(ctx context.Context, classID, userCode string, score int) error {
	const q = `UPDATE submissions SET score = $1
		FROM users
		WHERE users.id = submissions.user_id AND users.code = $2 AND submissions.class_id = $3`
	_, err := s.exec.ExecContext(ctx, q, score, userCode, classID)
	return errors.Wrap(err, "updating score")
}

// ----- aggregates -----

func (s store) QueryCourseTotals(ctx context.Context, courseID string) ([]int, error) {
	const q = `SELECT COALESCE(SUM(submissions.score), 0) AS total_score
		FROM users
		JOIN registrations ON users.id = registrations.user_id
		JOIN courses ON registrations.course_id = courses.id
		LEFT JOIN classes ON courses.id = classes.course_id
		LEFT JOIN submissions ON users.id = submissions.user_id AND submissions.class_id = classes.id
		WHERE courses.id = $1
		GROUP BY users.id`
	totals := make([]int, 0)
	err := sqlx.SelectContext(ctx, s.exec, &totals, q, courseID)
	return totals, errors.Wrap(err, "selecting course totals")
}

func (s store) QueryStudentGPAs(ctx context.Context) ([]float64, error) {
	const q = `SELECT CAST(COALESCE(SUM(submissions.score * courses.credit), 0) AS double precision) / 100 / credits.credits AS gpa
		FROM users
		JOIN (
			SELECT users.id AS user_id, SUM(courses.credit) AS credits
			FROM users
			JOIN registrations ON users.id = registrations.user_id
			JOIN courses ON registrations.course_id = courses.id AND courses.status = $1
			GROUP BY users.id
		) AS credits ON credits.user_id = users.id
		JOIN registrations ON users.id = registrations.user_id
		JOIN courses ON registrations.course_id = courses.id AND courses.status = $1
		LEFT JOIN classes ON courses.id = classes.course_id
		LEFT JOIN submissions ON users.id = submissions.user_id AND submissions.class_id = classes.id
		WHERE users.type = $2
		GROUP BY users.id, credits.credits`
	gpas := make([]float64, 0)
	err := sqlx.SelectContext(ctx, s.exec, &gpas, q, string(course.StatusClosed), string(user.TypeStudent))
	return gpas, errors.Wrap(err, "selecting GPAs")
}
