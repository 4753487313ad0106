package course

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

func (svc *service) RegisterCourses(ctx context.Context, userID string, courseIDs []string) error {
	// course rows are locked in ascending id order so that overlapping batches cannot deadlock
	ids := sortedUnique(courseIDs)

	return svc.inTx(ctx, nil, func(tx Tx) error {
		regErr := new(RegistrationError)
		newlyAdded := make([]Course, 0, len(ids))
		for _, id := range ids {
			c, err := tx.GetCourseForShare(ctx, id)
			if err != nil {
				if errors.Cause(err) == ErrNotFound {
					regErr.CourseNotFound = append(regErr.CourseNotFound, id)
					continue
				}
				return errors.Wrap(err, "getting course")
			}

			if c.Status != StatusRegistration {
				regErr.NotRegistrableStatus = append(regErr.NotRegistrableStatus, c.ID)
				continue
			}

			registered, err := tx.IsRegistered(ctx, c.ID, userID)
			if err != nil {
				return errors.Wrap(err, "checking registration")
			}
			if registered {
				continue
			}

			newlyAdded = append(newlyAdded, c)
		}

		alreadyRegistered, err := tx.QueryRegisteredCourses(ctx, userID, StatusClosed)
		if err != nil {
			return errors.Wrap(err, "querying registered courses")
		}
		schedule := make([]Course, 0, len(alreadyRegistered)+len(newlyAdded))
		for _, c := range alreadyRegistered {
			schedule = append(schedule, c.Course)
		}
		schedule = append(schedule, newlyAdded...)

		for _, c1 := range newlyAdded {
			for _, c2 := range schedule {
				if c1.ConflictsWith(c2) {
					regErr.ScheduleConflict = append(regErr.ScheduleConflict, c1.ID)
					break
				}
			}
		}

		if !regErr.empty() {
			return regErr
		}

		for _, c := range newlyAdded {
			if err = tx.CreateRegistration(ctx, c.ID, userID); err != nil {
				return errors.Wrap(err, "creating registration")
			}
		}
		return nil
	})
}

func (svc *service) RegisteredCourses(ctx context.Context, userID string) ([]RegisteredCourse, error) {
	var res []RegisteredCourse
	err := svc.inTx(ctx, nil, func(tx Tx) error {
		courses, err := tx.QueryRegisteredCourses(ctx, userID, StatusClosed)
		if err != nil {
			return errors.Wrap(err, "querying registered courses")
		}
		res = make([]RegisteredCourse, 0, len(courses))
		for _, c := range courses {
			res = append(res, RegisteredCourse{
				ID:        c.ID,
				Name:      c.Name,
				Teacher:   c.Teacher,
				Period:    c.Period,
				DayOfWeek: c.DayOfWeek,
			})
		}
		return nil
	})
	return res, err
}

func sortedUnique(ids []string) []string {
	sorted := append(make([]string, 0, len(ids)), ids...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
