package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/user"
)

type userRepository struct {
	store
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{store: store{db: db}}
}

func (repo *userRepository) CheckCodeUniqueness(_ context.Context, code string) error {
	d, done := repo.view()
	defer done()

	for _, usr := range d.users {
		if usr.Code == code {
			return user.ErrCodeExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.CheckCodeUniqueness(ctx, usr.Code); err != nil {
		return user.User{}, err
	}

	d, done := repo.view()
	defer done()
	d.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	d, done := repo.view()
	defer done()

	if usr, ok := d.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByCode(_ context.Context, code string) (user.User, error) {
	d, done := repo.view()
	defer done()

	for _, usr := range d.users {
		if usr.Code == code {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	d, done := repo.view()
	defer done()

	orig, ok := d.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// code & type are immutable
	orig.Name = usr.Name
	if usr.HashedPassword != nil {
		orig.HashedPassword = usr.HashedPassword
	}
	d.users[usr.ID] = orig
	return orig, nil
}
