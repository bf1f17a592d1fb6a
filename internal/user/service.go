package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-jobly/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/database"
)

const (
	msgTaken          = "Username or email taken."
	msgNotFound       = "User not found."
	msgBadCredentials = "Invalid username/password"
	msgEmptyPatch     = "No fields provided for update"
	msgPasswordLong   = "password must be at most 72 bytes"
)

// bcrypt rejects longer input with ErrPasswordTooLong.
const maxPasswordBytes = 72

func checkPassword(pw string) error {
	if len(pw) > maxPasswordBytes {
		return apperror.NewValidation("invalid payload", msgPasswordLong)
	}
	return nil
}

// PasswordHasher defines minimal hashing interface (abstract so tests can
// use a cheap cost).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash reports whether hash was produced with a different work factor
// than the one currently configured.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return c != b.cost()
}

// UserService orchestrates user lifecycle and password authentication.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
}

func NewUserService(db *sqlx.DB, r *userrepo.UserRepo, hasher PasswordHasher) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher}
}

// Create registers u, whose Password is the plain text.
func (s *UserService) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := checkPassword(u.Password); err != nil {
		return nil, err
	}
	taken, err := s.repo.Taken(ctx, u.Username, u.Email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, apperror.NewAlreadyExists(msgTaken, nil)
	}
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	in := *u
	in.Password = hash
	out, err := s.repo.Create(ctx, &in)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewAlreadyExists(msgTaken, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return out, nil
}

func (s *UserService) List(ctx context.Context) ([]entity.Summary, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*entity.Profile, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u.Profile(), nil
}

// Update applies p. A new password is hashed before it is stored.
func (s *UserService) Update(ctx context.Context, username string, p entity.Patch) (*entity.Profile, error) {
	if p.Password != nil {
		if err := checkPassword(*p.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		p.Password = &hash
	}
	fields := p.Fields()
	if len(fields) == 0 {
		return nil, apperror.NewValidation(msgEmptyPatch)
	}
	u, err := s.repo.Update(ctx, username, fields)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperror.NewNotFound(msgNotFound)
		case database.IsUniqueViolation(err):
			return nil, apperror.NewAlreadyExists(msgTaken, err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u.Profile(), nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	rows, err := s.repo.Delete(ctx, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows == 0 {
		return apperror.NewNotFound(msgNotFound)
	}
	return nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way to avoid user enumeration. A hash made with an
// outdated work factor is replaced on success.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewAuth(msgBadCredentials)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, apperror.NewAuth(msgBadCredentials)
	}
	if s.hasher.NeedsRehash(u.Password) {
		if hash, hErr := s.hasher.Hash(password); hErr == nil {
			_, _ = s.repo.Update(ctx, username, entity.Patch{Password: &hash}.Fields())
		}
	}
	return u, nil
}
