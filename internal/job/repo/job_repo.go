package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/job/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// JobRepo provides data access for the jobs table using sqlx.
type JobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) *JobRepo { return &JobRepo{db: db} }

func SearchStatement(f entity.SearchFilter) sqlbuilder.Statement {
	return sqlbuilder.RangeSearch{
		Table:         "jobs",
		Columns:       []string{"title", "company_handle"},
		PatternColumn: "title",
		Pattern:       f.Pattern,
		Bounds: []sqlbuilder.Bound{
			sqlbuilder.Min("salary", f.MinSalary),
			sqlbuilder.Min("equity", f.MinEquity),
		},
		OrderBy: "id",
	}.Build()
}

func (r *JobRepo) Search(ctx context.Context, f entity.SearchFilter) ([]entity.Summary, error) {
	st := SearchStatement(f)
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, st.Query, st.Args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Posted reports whether company already lists a job with this title.
func (r *JobRepo) Posted(ctx context.Context, title, companyHandle string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM jobs WHERE title=$1 AND company_handle=$2)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, title, companyHandle); err != nil {
		return false, err
	}
	return ok, nil
}

// Create inserts j with its id already assigned.
func (r *JobRepo) Create(ctx context.Context, j *entity.Job) (*entity.Job, error) {
	const q = `INSERT INTO jobs (id, title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4, $5) RETURNING *`
	var row entity.Job
	if err := r.db.GetContext(ctx, &row, q, j.ID, j.Title, j.Salary, j.Equity, j.CompanyHandle); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *JobRepo) GetByID(ctx context.Context, id int64) (*entity.Job, error) {
	const q = `SELECT id, title, salary, equity, company_handle, date_posted FROM jobs WHERE id=$1`
	var row entity.Job
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *JobRepo) Update(ctx context.Context, id int64, fields []sqlbuilder.Field) (*entity.Job, error) {
	st, err := sqlbuilder.BuildPartialUpdate("jobs", fields, "id", id)
	if err != nil {
		return nil, err
	}
	var row entity.Job
	if err := r.db.GetContext(ctx, &row, st.Query, st.Args...); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *JobRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
