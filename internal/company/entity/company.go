package entity

import "github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"

// MaxCompanySize stands in for a missing max_employees so the upper bound
// clause is always present.
const MaxCompanySize = 80000000

// Company is a row of the companies table.
type Company struct {
	Handle       string  `db:"handle" json:"handle"`
	Name         string  `db:"name" json:"name"`
	NumEmployees int     `db:"num_employees" json:"num_employees"`
	Description  *string `db:"description" json:"description"`
	LogoURL      *string `db:"logo_url" json:"logo_url"`
}

// Summary is the list/search projection.
type Summary struct {
	Handle string `db:"handle" json:"handle"`
	Name   string `db:"name" json:"name"`
}

// SearchFilter holds already-parsed search inputs. Zero values are not
// defaults; use NewSearchFilter.
type SearchFilter struct {
	Pattern      *string
	MinEmployees int
	MaxEmployees int
}

// NewSearchFilter returns the widest filter: any name, 0..MaxCompanySize.
func NewSearchFilter() SearchFilter {
	return SearchFilter{MinEmployees: 0, MaxEmployees: MaxCompanySize}
}

// Patch lists the writable columns. Nil means unchanged; the nullable
// columns can also be cleared.
type Patch struct {
	Name         *string
	NumEmployees *int
	Description  sqlbuilder.Nullable[string]
	LogoURL      sqlbuilder.Nullable[string]
}

// Fields returns the set columns in table order.
func (p Patch) Fields() []sqlbuilder.Field {
	var f []sqlbuilder.Field
	if p.Name != nil {
		f = append(f, sqlbuilder.Field{Column: "name", Value: *p.Name})
	}
	if p.NumEmployees != nil {
		f = append(f, sqlbuilder.Field{Column: "num_employees", Value: *p.NumEmployees})
	}
	f = p.Description.Field(f, "description")
	return p.LogoURL.Field(f, "logo_url")
}
