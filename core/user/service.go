package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrCodeExists         = errors.New("a user with this code already exists")
	ErrInvalidCredentials = errors.New("code or password is wrong")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByCode(ctx context.Context, code string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByCode(ctx context.Context, code string) (User, error)
		Authenticate(ctx context.Context, code, pwd string) (User, error)
		ResetPassword(ctx context.Context, code, pwd string) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.repo.CheckCodeUniqueness(ctx, nu.Code); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "checking code uniqueness")
	}

	usr := User{
		ID:   core.NewID(),
		Code: nu.Code,
		Name: nu.Name,
		Type: nu.Type,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, "creating user")
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByCode(ctx context.Context, code string) (User, error) {
	return svc.repo.GetUserByCode(ctx, core.CleanString(code))
}

// Authenticate returns the user matching code & pwd, or ErrInvalidCredentials.
func (svc *service) Authenticate(ctx context.Context, code, pwd string) (User, error) {
	usr, err := svc.GetByCode(ctx, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by code")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) ResetPassword(ctx context.Context, code, pwd string) (User, error) {
	usr, err := svc.GetByCode(ctx, code)
	if err != nil {
		return User{}, errors.Wrap(err, "finding user by code")
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}
