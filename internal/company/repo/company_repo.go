package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/company/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

const (
	table     = "companies"
	keyColumn = "handle"
)

// CompanyRepo provides data access for the companies table using sqlx.
type CompanyRepo struct {
	db *sqlx.DB
}

func NewCompanyRepo(db *sqlx.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// SearchStatement renders the search for f. Range checks are the caller's.
func SearchStatement(f entity.SearchFilter) sqlbuilder.Statement {
	return sqlbuilder.RangeSearch{
		Table:         table,
		Columns:       []string{"handle", "name"},
		PatternColumn: "name",
		Pattern:       f.Pattern,
		Bounds: []sqlbuilder.Bound{
			sqlbuilder.Min("num_employees", f.MinEmployees),
			sqlbuilder.Max("num_employees", f.MaxEmployees),
		},
		OrderBy: "handle",
	}.Build()
}

// Search returns matching summaries; an empty slice when nothing matches.
func (r *CompanyRepo) Search(ctx context.Context, f entity.SearchFilter) ([]entity.Summary, error) {
	st := SearchStatement(f)
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, st.Query, st.Args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts c and returns the stored row.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) (*entity.Company, error) {
	const q = `INSERT INTO companies (handle, name, num_employees, description, logo_url)
		VALUES ($1, $2, $3, $4, $5) RETURNING *`
	var row entity.Company
	if err := r.db.GetContext(ctx, &row, q, c.Handle, c.Name, c.NumEmployees, c.Description, c.LogoURL); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByHandle returns the full row or sql.ErrNoRows.
func (r *CompanyRepo) GetByHandle(ctx context.Context, handle string) (*entity.Company, error) {
	const q = `SELECT handle, name, num_employees, description, logo_url FROM companies WHERE handle=$1`
	var row entity.Company
	if err := r.db.GetContext(ctx, &row, q, handle); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update applies fields to the row keyed by handle. Zero rows surface as
// sql.ErrNoRows.
func (r *CompanyRepo) Update(ctx context.Context, handle string, fields []sqlbuilder.Field) (*entity.Company, error) {
	st, err := sqlbuilder.BuildPartialUpdate(table, fields, keyColumn, handle)
	if err != nil {
		return nil, err
	}
	var row entity.Company
	if err := r.db.GetContext(ctx, &row, st.Query, st.Args...); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the row and returns the number of rows affected.
func (r *CompanyRepo) Delete(ctx context.Context, handle string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE handle=$1`, handle)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
