package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

// Create adds a new course taught by teacherID and returns its id.
// Creating a course whose code exists with the very same attributes returns the existing id.
func (svc *service) Create(ctx context.Context, teacherID string, nc NewCourse) (string, error) {
	var id string
	err := svc.inTx(ctx, nil, func(tx Tx) error {
		existing, err := tx.GetCourseByCode(ctx, nc.Code)
		switch {
		case err == nil:
			if existing.TeacherID == teacherID && nc.sameAs(existing) {
				id = existing.ID
				return nil
			}
			return ErrCodeExists
		case errors.Cause(err) != ErrNotFound:
			return errors.Wrap(err, "getting course by code")
		}

		c := Course{
			ID:          core.NewID(),
			Code:        nc.Code,
			Type:        nc.Type,
			Name:        nc.Name,
			Description: nc.Description,
			Credit:      nc.Credit,
			Period:      nc.Period,
			DayOfWeek:   nc.DayOfWeek,
			TeacherID:   teacherID,
			Keywords:    nc.Keywords,
			Status:      StatusRegistration,
		}
		if err = tx.CreateCourse(ctx, c); err != nil {
			if errors.Cause(err) == ErrCodeExists {
				return ErrCodeExists
			}
			return errors.Wrap(err, "creating course")
		}
		id = c.ID
		return nil
	})
	return id, err
}

func (svc *service) GetDetail(ctx context.Context, id string) (CourseDetail, error) {
	return svc.repo.GetCourseDetail(ctx, id)
}

func (svc *service) Search(ctx context.Context, filter SearchFilter) ([]CourseDetail, bool, error) {
	filter.Clean()
	limit := filter.Limit
	if limit > 0 {
		filter.Limit++ // one more row tells whether a next page exists
	}

	courses, err := svc.repo.SearchCourses(ctx, filter)
	if err != nil {
		return nil, false, errors.Wrap(err, "searching courses")
	}
	if courses == nil {
		courses = make([]CourseDetail, 0)
	}

	hasNext := limit > 0 && len(courses) > limit
	if hasNext {
		courses = courses[:limit]
	}
	return courses, hasNext, nil
}

func (svc *service) SetStatus(ctx context.Context, id string, status Status) error {
	return svc.inTx(ctx, nil, func(tx Tx) error {
		if _, err := tx.GetCourse(ctx, id); err != nil {
			return err
		}
		return errors.Wrap(tx.UpdateCourseStatus(ctx, id, status), "updating course status")
	})
}

// Classes lists the classes of the course by part, flagging those userID submitted an assignment for.
func (svc *service) Classes(ctx context.Context, courseID, userID string) ([]ClassWithSubmitted, error) {
	var classes []ClassWithSubmitted
	err := svc.inTx(ctx, &core.TxOptions{ReadOnly: true}, func(tx Tx) error {
		if _, err := tx.GetCourse(ctx, courseID); err != nil {
			return err
		}
		var err error
		classes, err = tx.QueryClassesWithSubmitted(ctx, courseID, userID)
		return errors.Wrap(err, "querying classes")
	})
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = make([]ClassWithSubmitted, 0)
	}
	return classes, nil
}

// AddClass adds a class to an in-progress course and returns its id.
// Adding a class whose part exists with the very same content returns the existing id.
func (svc *service) AddClass(ctx context.Context, courseID string, nc NewClass) (string, error) {
	var id string
	err := svc.inTx(ctx, nil, func(tx Tx) error {
		c, err := tx.GetCourseForShare(ctx, courseID)
		if err != nil {
			return err
		}
		if c.Status != StatusInProgress {
			return ErrNotInProgress
		}

		existing, err := tx.GetClassByPart(ctx, courseID, nc.Part)
		switch {
		case err == nil:
			if existing.Title == nc.Title && existing.Description == nc.Description {
				id = existing.ID
				return nil
			}
			return ErrPartExists
		case errors.Cause(err) != ErrClassNotFound:
			return errors.Wrap(err, "getting class by part")
		}

		cls := Class{
			ID:          core.NewID(),
			CourseID:    courseID,
			Part:        nc.Part,
			Title:       nc.Title,
			Description: nc.Description,
		}
		if err = tx.CreateClass(ctx, cls); err != nil {
			if errors.Cause(err) == ErrPartExists {
				return ErrPartExists
			}
			return errors.Wrap(err, "creating class")
		}
		id = cls.ID
		return nil
	})
	return id, err
}

// SubmitAssignment records the assignment fileName of userID; a new submission replaces the previous one.
func (svc *service) SubmitAssignment(ctx context.Context, userID, courseID, classID, fileName string) error {
	return svc.inTx(ctx, nil, func(tx Tx) error {
		c, err := tx.GetCourseForShare(ctx, courseID)
		if err != nil {
			return err
		}
		if c.Status != StatusInProgress {
			return ErrNotInProgress
		}

		registered, err := tx.IsRegistered(ctx, courseID, userID)
		if err != nil {
			return errors.Wrap(err, "checking registration")
		}
		if !registered {
			return ErrNotRegistered
		}

		cls, err := classOf(ctx, tx, courseID, classID, true)
		if err != nil {
			return err
		}
		if cls.SubmissionClosed {
			return ErrSubmissionClosed
		}

		sub := Submission{UserID: userID, ClassID: classID, FileName: fileName}
		return errors.Wrap(tx.UpsertSubmission(ctx, sub), "upserting submission")
	})
}

func (svc *service) CloseSubmissions(ctx context.Context, courseID, classID string) error {
	return svc.inTx(ctx, nil, func(tx Tx) error {
		if _, err := classOf(ctx, tx, courseID, classID, false); err != nil {
			return err
		}
		return errors.Wrap(tx.CloseSubmissions(ctx, classID), "closing submissions")
	})
}

func (svc *service) RegisterScores(ctx context.Context, courseID, classID string, scores []Score) error {
	return svc.inTx(ctx, nil, func(tx Tx) error {
		cls, err := classOf(ctx, tx, courseID, classID, true)
		if err != nil {
			return err
		}
		if !cls.SubmissionClosed {
			return ErrSubmissionNotClosed
		}

		for _, s := range scores {
			if err = tx.UpdateScore(ctx, classID, s.UserCode, s.Score); err != nil {
				return errors.Wrap(err, "updating score")
			}
		}
		return nil
	})
}

// classOf gets the class, making sure it belongs to the course.
func classOf(ctx context.Context, tx Tx, courseID, classID string, forShare bool) (Class, error) {
	get := tx.GetClass
	if forShare {
		get = tx.GetClassForShare
	}
	cls, err := get(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	if cls.CourseID != courseID {
		return Class{}, ErrClassNotFound
	}
	return cls, nil
}
