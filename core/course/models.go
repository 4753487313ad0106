package course

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

type (
	Type      string
	DayOfWeek string
	Status    string
)

const (
	TypeLiberalArts   Type = "liberal-arts"
	TypeMajorSubjects Type = "major-subjects"

	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"

	StatusRegistration Status = "registration"
	StatusInProgress   Status = "in-progress"
	StatusClosed       Status = "closed"
)

type Course struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Type        Type      `json:"type" db:"type"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Credit      int       `json:"credit" db:"credit"`
	Period      int       `json:"period" db:"period"`
	DayOfWeek   DayOfWeek `json:"day_of_week" db:"day_of_week"`
	TeacherID   string    `json:"-" db:"teacher_id"`
	Keywords    string    `json:"keywords" db:"keywords"`
	Status      Status    `json:"status" db:"status"`
}

// ConflictsWith reports whether both courses are different courses taking place in the same time slot.
func (c Course) ConflictsWith(other Course) bool {
	return c.ID != other.ID && c.Period == other.Period && c.DayOfWeek == other.DayOfWeek
}

// CourseDetail is a Course along with its teacher's name.
type CourseDetail struct {
	Course
	Teacher string `json:"teacher" db:"teacher"`
}

// RegisteredCourse is the summary of a course a student is registered to.
type RegisteredCourse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Teacher   string    `json:"teacher"`
	Period    int       `json:"period"`
	DayOfWeek DayOfWeek `json:"day_of_week"`
}

type Class struct {
	ID               string `json:"id" db:"id"`
	CourseID         string `json:"-" db:"course_id"`
	Part             int    `json:"part" db:"part"`
	Title            string `json:"title" db:"title"`
	Description      string `json:"description" db:"description"`
	SubmissionClosed bool   `json:"submission_closed" db:"submission_closed"`
}

// ClassWithSubmitted is a Class along with whether a given student has submitted its assignment.
type ClassWithSubmitted struct {
	Class
	Submitted bool `json:"submitted" db:"submitted"`
}

type Submission struct {
	UserID   string `db:"user_id"`
	ClassID  string `db:"class_id"`
	FileName string `db:"file_name"`
	Score    *int   `db:"score"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Code        string    `json:"code" validate:"required,alphanum_"`
	Type        Type      `json:"type" validate:"required,oneof=liberal-arts major-subjects"`
	Name        string    `json:"name" validate:"required,notblank"`
	Description string    `json:"description"`
	Credit      int       `json:"credit" validate:"min=1"`
	Period      int       `json:"period" validate:"min=1"`
	DayOfWeek   DayOfWeek `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday"`
	Keywords    string    `json:"keywords"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Keywords = core.CleanString(nc.Keywords)
	return validate.Struct(nc)
}

// sameAs reports whether c holds exactly the attributes requested by nc.
func (nc NewCourse) sameAs(c Course) bool {
	return nc.Type == c.Type &&
		nc.Name == c.Name &&
		nc.Description == c.Description &&
		nc.Credit == c.Credit &&
		nc.Period == c.Period &&
		nc.DayOfWeek == c.DayOfWeek &&
		nc.Keywords == c.Keywords
}

type UpdateStatus struct {
	Status Status `json:"status" validate:"required,oneof=registration in-progress closed"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = Status(core.CleanString(string(us.Status), true /* lower */))
	return validate.Struct(us)
}

// NewClass contains information needed to add a Class to a Course.
type NewClass struct {
	Part        int    `json:"part" validate:"min=1"`
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// Score is a graded assignment of the student identified by UserCode.
type Score struct {
	UserCode string `json:"user_code" validate:"required"`
	Score    int    `json:"score" validate:"min=0,max=100"`
}

// SearchFilter restricts course searches; zero values are ignored.
type SearchFilter struct {
	Type      Type      `query:"type"`
	Credit    int       `query:"credit"`
	Teacher   string    `query:"teacher"`
	Period    int       `query:"period"`
	DayOfWeek DayOfWeek `query:"day_of_week"`
	Keywords  string    `query:"keywords"`
	Status    Status    `query:"status"`

	Limit  int `query:"-"`
	Offset int `query:"-"`
}

func (sf *SearchFilter) Clean() {
	sf.Teacher = core.CleanString(sf.Teacher)
	sf.Keywords = core.CleanString(sf.Keywords)
	if sf.Credit < 0 {
		sf.Credit = 0
	}
	if sf.Period < 0 {
		sf.Period = 0
	}
}

// KeywordList splits the space separated Keywords.
func (sf SearchFilter) KeywordList() []string {
	return strings.Fields(sf.Keywords)
}
