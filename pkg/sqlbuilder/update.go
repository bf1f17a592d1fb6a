// Package sqlbuilder constructs parameterized PostgreSQL statements for
// partial updates and range searches. Nothing in this package executes SQL.
package sqlbuilder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrEmptyPatch       = errors.New("sqlbuilder: no fields to update")
	ErrKeyColumnInPatch = errors.New("sqlbuilder: key column cannot be updated")
	ErrDuplicateColumn  = errors.New("sqlbuilder: column set more than once")
)

// Field is one column assignment of a partial update.
type Field struct {
	Column string
	Value  any
}

// Statement is statement text plus its positional arguments ($1..$N).
type Statement struct {
	Query string
	Args  []any
}

// BuildPartialUpdate returns
//
//	UPDATE <table> SET c1=$1, c2=$2 WHERE <keyColumn>=$3 RETURNING *
//
// with the SET clause in the order of fields and the key value bound last.
// Column names are not checked against a schema; callers pass only columns
// from their own allow-list.
func BuildPartialUpdate(table string, fields []Field, keyColumn string, keyValue any) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, ErrEmptyPatch
	}

	seen := make(map[string]struct{}, len(fields))
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		if f.Column == keyColumn {
			return Statement{}, ErrKeyColumnInPatch
		}
		if _, dup := seen[f.Column]; dup {
			return Statement{}, ErrDuplicateColumn
		}
		seen[f.Column] = struct{}{}
		sets = append(sets, f.Column+"="+placeholder(i+1))
		args = append(args, f.Value)
	}
	args = append(args, keyValue)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	b.WriteString(" WHERE ")
	b.WriteString(keyColumn)
	b.WriteString("=")
	b.WriteString(placeholder(len(args)))
	b.WriteString(" RETURNING *")
	return Statement{Query: b.String(), Args: args}, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
