package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/company/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/company/repo"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

const (
	msgRangeInvalid  = "Min employees must be less than max employees."
	msgNoneFound     = "No companies found."
	msgNotFound      = "Company not found."
	msgAlreadyExists = "Company handle/name already exists"
	msgEmptyPatch    = "No fields provided for update"
)

// Service implements company search and CRUD on top of the repo.
type Service struct {
	repo  *repo.CompanyRepo
	empty sqlbuilder.EmptyPolicy
}

func NewService(db *sqlx.DB, r *repo.CompanyRepo, empty sqlbuilder.EmptyPolicy) *Service {
	if r == nil {
		r = repo.NewCompanyRepo(db)
	}
	return &Service{repo: r, empty: empty}
}

// Search validates the employee range before touching the store, then
// returns {handle, name} for every match.
func (s *Service) Search(ctx context.Context, f entity.SearchFilter) ([]entity.Summary, error) {
	if err := sqlbuilder.CheckRange(f.MinEmployees, f.MaxEmployees); err != nil {
		return nil, apperror.NewRangeInvalid(msgRangeInvalid, err)
	}
	out, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	if err := s.empty.Check(len(out), apperror.NewNotFound(msgNoneFound)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in *entity.Company) (*entity.Company, error) {
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewAlreadyExists(msgAlreadyExists, err)
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, handle string) (*entity.Company, error) {
	c, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, handle string, p entity.Patch) (*entity.Company, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return nil, apperror.NewValidation(msgEmptyPatch)
	}
	c, err := s.repo.Update(ctx, handle, fields)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperror.NewNotFound(msgNotFound)
		case database.IsUniqueViolation(err):
			return nil, apperror.NewAlreadyExists(msgAlreadyExists, err)
		}
		return nil, fmt.Errorf("update company: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, handle string) error {
	rows, err := s.repo.Delete(ctx, handle)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if rows == 0 {
		return apperror.NewNotFound(msgNotFound)
	}
	return nil
}
