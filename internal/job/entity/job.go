package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// Job is a row of the jobs table. ID and DatePosted are filled by the
// server unless the caller supplies an ID. Snowflake ids pass 2^53, so the
// id is written as a JSON string.
type Job struct {
	ID            int64     `db:"id" json:"id,string"`
	Title         string    `db:"title" json:"title"`
	Salary        float64   `db:"salary" json:"salary"`
	Equity        float64   `db:"equity" json:"equity"`
	CompanyHandle string    `db:"company_handle" json:"company_handle"`
	DatePosted    time.Time `db:"date_posted" json:"date_posted"`
}

// Summary is the list/search projection.
type Summary struct {
	Title         string `db:"title" json:"title"`
	CompanyHandle string `db:"company_handle" json:"company_handle"`
}

// SearchFilter holds already-parsed search inputs; the zero value matches
// every job.
type SearchFilter struct {
	Pattern   *string
	MinSalary float64
	MinEquity float64
}

// Patch lists the writable columns. Nil means unchanged.
type Patch struct {
	Title         *string
	Salary        *float64
	Equity        *float64
	CompanyHandle *string
}

func (p Patch) Fields() []sqlbuilder.Field {
	var f []sqlbuilder.Field
	if p.Title != nil {
		f = append(f, sqlbuilder.Field{Column: "title", Value: *p.Title})
	}
	if p.Salary != nil {
		f = append(f, sqlbuilder.Field{Column: "salary", Value: *p.Salary})
	}
	if p.Equity != nil {
		f = append(f, sqlbuilder.Field{Column: "equity", Value: *p.Equity})
	}
	if p.CompanyHandle != nil {
		f = append(f, sqlbuilder.Field{Column: "company_handle", Value: *p.CompanyHandle})
	}
	return f
}
