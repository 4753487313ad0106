package course

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("course not found")
	ErrClassNotFound       = errors.New("class not found")
	ErrCodeExists          = errors.New("a course with the same code already exists")
	ErrPartExists          = errors.New("a class with the same part already exists")
	ErrNotInProgress       = errors.New("this course is not in progress")
	ErrNotRegistered       = errors.New("you have not taken this course")
	ErrSubmissionClosed    = errors.New("submission has been closed for this class")
	ErrSubmissionNotClosed = errors.New("this assignment is not closed yet")
)

// RegistrationError lists every requested course that prevented a registration batch from being committed.
type RegistrationError struct {
	CourseNotFound       []string `json:"course_not_found,omitempty"`
	NotRegistrableStatus []string `json:"not_registrable_status,omitempty"`
	ScheduleConflict     []string `json:"schedule_conflict,omitempty"`
}

func (e *RegistrationError) Error() string {
	var b strings.Builder
	b.WriteString("course registration failed")
	write := func(label string, ids []string) {
		if len(ids) > 0 {
			b.WriteString("; " + label + ": " + strings.Join(ids, ","))
		}
	}
	write("course not found", e.CourseNotFound)
	write("not registrable status", e.NotRegistrableStatus)
	write("schedule conflict", e.ScheduleConflict)
	return b.String()
}

func (e *RegistrationError) empty() bool {
	return len(e.CourseNotFound) == 0 && len(e.NotRegistrableStatus) == 0 && len(e.ScheduleConflict) == 0
}

// IsRegistrationError returns the *RegistrationError err wraps, if any.
func IsRegistrationError(err error) (*RegistrationError, bool) {
	regErr, ok := errors.Cause(err).(*RegistrationError)
	return regErr, ok
}
