package sqlbuilder

import (
	"errors"
	"strings"
)

// ErrRangeInvalid is returned when a lower bound exceeds its upper bound.
var ErrRangeInvalid = errors.New("sqlbuilder: lower bound exceeds upper bound")

// Bound is an inclusive numeric filter on one column.
type Bound struct {
	Column string
	Op     BoundOp
	Value  any
}

type BoundOp string

const (
	AtLeast BoundOp = ">="
	AtMost  BoundOp = "<="
)

// Min returns a lower bound on column.
func Min(column string, v any) Bound { return Bound{Column: column, Op: AtLeast, Value: v} }

// Max returns an upper bound on column.
func Max(column string, v any) Bound { return Bound{Column: column, Op: AtMost, Value: v} }

// RangeSearch describes a SELECT over one table filtered by an optional
// substring pattern and a fixed set of bounds. Bounds are always emitted, so
// callers substitute permissive defaults for missing values instead of
// dropping the clause.
type RangeSearch struct {
	Table         string
	Columns       []string
	PatternColumn string
	// Pattern is matched case-insensitively anywhere in PatternColumn.
	// Nil or empty means no pattern clause.
	Pattern *string
	Bounds  []Bound
	OrderBy string
}

// HasPattern reports whether the search carries a text pattern.
func (s RangeSearch) HasPattern() bool {
	return s.Pattern != nil && *s.Pattern != ""
}

// Build renders the statement. With a pattern the pattern is $1 and the
// bounds follow in order; without one the bounds start at $1.
func (s RangeSearch) Build() Statement {
	conds := make([]string, 0, len(s.Bounds)+1)
	args := make([]any, 0, len(s.Bounds)+1)

	if s.HasPattern() {
		args = append(args, SubstringPattern(*s.Pattern))
		conds = append(conds, s.PatternColumn+" ILIKE "+placeholder(len(args)))
	}
	for _, b := range s.Bounds {
		args = append(args, b.Value)
		conds = append(conds, b.Column+" "+string(b.Op)+" "+placeholder(len(args)))
	}

	var q strings.Builder
	q.WriteString("SELECT ")
	q.WriteString(strings.Join(s.Columns, ", "))
	q.WriteString(" FROM ")
	q.WriteString(s.Table)
	if len(conds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(conds, " AND "))
	}
	if s.OrderBy != "" {
		q.WriteString(" ORDER BY ")
		q.WriteString(s.OrderBy)
	}
	return Statement{Query: q.String(), Args: args}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SubstringPattern wraps p in % wildcards after escaping LIKE metacharacters,
// so "50%" only matches the literal text "50%".
func SubstringPattern(p string) string {
	return "%" + likeEscaper.Replace(p) + "%"
}

// CheckRange returns ErrRangeInvalid when lo > hi.
func CheckRange[T int | int64 | float64](lo, hi T) error {
	if lo > hi {
		return ErrRangeInvalid
	}
	return nil
}
