package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Taken reports whether username or email is already registered.
func (r *UserRepo) Taken(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1 OR email=$2)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, username, email); err != nil {
		return false, err
	}
	return ok, nil
}

// Create inserts u; u.Password must already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `INSERT INTO users (username, password, first_name, last_name, email, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING *`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, u.Username, u.Password, u.FirstName, u.LastName, u.Email, u.PhotoURL); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepo) List(ctx context.Context) ([]entity.Summary, error) {
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, `SELECT username, first_name, last_name, email FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByUsername fetches the full row, password hash included, or
// sql.ErrNoRows.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const q = `SELECT username, password, first_name, last_name, email, photo_url, is_admin
		FROM users WHERE username=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, username); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepo) Update(ctx context.Context, username string, fields []sqlbuilder.Field) (*entity.User, error) {
	st, err := sqlbuilder.BuildPartialUpdate("users", fields, "username", username)
	if err != nil {
		return nil, err
	}
	var row entity.User
	if err := r.db.GetContext(ctx, &row, st.Query, st.Args...); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepo) Delete(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username=$1`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
