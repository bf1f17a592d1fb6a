package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/job/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/job/repo"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/utilities"
)

const (
	msgNotFound       = "Job not found."
	msgAlreadyPosted  = "Job already posted."
	msgIDTaken        = "Job id already in use."
	msgUnknownCompany = "company_handle does not match any company"
	msgEmptyPatch     = "No fields provided for update"
)

// Service implements job search and CRUD. New ids come from a snowflake node
// shared by the whole process.
type Service struct {
	repo  *repo.JobRepo
	ids   *utilities.IDGenerator
	empty sqlbuilder.EmptyPolicy
}

func NewService(db *sqlx.DB, r *repo.JobRepo, ids *utilities.IDGenerator, empty sqlbuilder.EmptyPolicy) *Service {
	if r == nil {
		r = repo.NewJobRepo(db)
	}
	return &Service{repo: r, ids: ids, empty: empty}
}

func (s *Service) Search(ctx context.Context, f entity.SearchFilter) ([]entity.Summary, error) {
	out, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	if err := s.empty.Check(len(out), apperror.NewNotFound(msgNotFound)); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a job. A company may list a given title only once.
func (s *Service) Create(ctx context.Context, in *entity.Job) (*entity.Job, error) {
	posted, err := s.repo.Posted(ctx, in.Title, in.CompanyHandle)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if posted {
		return nil, apperror.NewAlreadyExists(msgAlreadyPosted, nil)
	}
	j := *in
	if j.ID == 0 {
		j.ID = s.ids.NextID()
	}
	out, err := s.repo.Create(ctx, &j)
	if err != nil {
		return nil, s.translate("create job", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *Service) Update(ctx context.Context, id int64, p entity.Patch) (*entity.Job, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return nil, apperror.NewValidation(msgEmptyPatch)
	}
	j, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, s.translate("update job", err)
	}
	return j, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if rows == 0 {
		return apperror.NewNotFound(msgNotFound)
	}
	return nil
}

func (s *Service) translate(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		if database.ConstraintName(err) == "jobs_pkey" {
			return apperror.NewAlreadyExists(msgIDTaken, err)
		}
		// jobs_posting_key, hit when two creates race past Posted
		return apperror.NewAlreadyExists(msgAlreadyPosted, err)
	case database.IsForeignKeyViolation(err):
		return apperror.NewValidation("invalid payload", msgUnknownCompany)
	}
	return fmt.Errorf("%s: %w", op, err)
}
