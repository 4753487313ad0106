package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/campus/core"
)

type Type string

const (
	TypeStudent Type = "student"
	TypeTeacher Type = "teacher"
)

type User struct {
	ID             string `json:"id" db:"id"`
	Code           string `json:"code" db:"code"`
	Name           string `json:"name" db:"name"`
	HashedPassword []byte `json:"-" db:"hashed_password"`
	Type           Type   `json:"type" db:"type"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.HashedPassword, []byte(pwd))
}

// IsAdmin reports whether the user manages courses. Teachers are the admins of the service.
func (u *User) IsAdmin() bool {
	return u.Type == TypeTeacher
}

func (u *User) IsStudent() bool {
	return u.Type == TypeStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Code     string `json:"code" validate:"required,alphanum_"`
	Name     string `json:"name" validate:"required,notblank"`
	Type     Type   `json:"type" validate:"required,oneof=student teacher"`
	Password string `json:"password" validate:"required,min=8"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Code = core.CleanString(nu.Code)
	nu.Name = core.CleanString(nu.Name)
	nu.Type = Type(core.CleanString(string(nu.Type), true /* lower */))
	return validate.Struct(nu)
}
