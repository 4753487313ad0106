package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE code = $1)", code); err != nil {
		return errors.Wrap(err, "selecting user")
	}
	if exists {
		return user.ErrCodeExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `INSERT INTO users (id, code, name, hashed_password, type) VALUES (:id, :code, :name, :hashed_password, :type)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrCodeExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, "SELECT * FROM users WHERE "+where+" = $1", arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id", id)
}

func (repo *userRepository) GetUserByCode(ctx context.Context, code string) (user.User, error) {
	return repo.getUser(ctx, "code", code)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `UPDATE users SET name = $1, hashed_password = COALESCE($2, hashed_password) WHERE id = $3`
	var pwd interface{} // NULL keeps the current password
	if len(usr.HashedPassword) > 0 {
		pwd = usr.HashedPassword
	}
	res, err := repo.db.ExecContext(ctx, q, usr.Name, pwd, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}
