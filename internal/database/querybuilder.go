package database

import (
	"fmt"
	"strings"
)

// DefaultPageSize is the fixed page size used by every list endpoint.
const DefaultPageSize = 10

// Cond is a single optional filter predicate: a SQL fragment using ?
// placeholders plus the values bound to them. Fragments are collected in
// order and folded into one WHERE clause, so the placeholder list and the
// argument list can never drift apart.
type Cond struct {
	SQL  string
	Args []interface{}
}

// QueryBuilder accumulates optional filter predicates for a list query.
type QueryBuilder struct {
	conds []Cond
}

// NewQueryBuilder creates an empty query builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Add appends a predicate. The fragment must contain one ? per argument.
func (b *QueryBuilder) Add(sql string, args ...interface{}) *QueryBuilder {
	b.conds = append(b.conds, Cond{SQL: sql, Args: args})
	return b
}

// AddSearch appends a case-insensitive substring match over the given
// columns, OR-joined. The term is LIKE-escaped so user input cannot inject
// wildcard characters.
func (b *QueryBuilder) AddSearch(term string, columns ...string) *QueryBuilder {
	if term == "" || len(columns) == 0 {
		return b
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+" ILIKE ?")
		args = append(args, pattern)
	}
	return b.Add("("+strings.Join(parts, " OR ")+")", args...)
}

// Empty reports whether no predicates have been added.
func (b *QueryBuilder) Empty() bool {
	return len(b.conds) == 0
}

// Where folds the predicates into an " AND cond1 AND cond2 ..." suffix with
// $n placeholders numbered from start, returning the suffix and the bound
// arguments in matching order. It is meant to be appended to a base query
// that already has a WHERE clause binding $1..$(start-1). With no
// predicates it returns an empty suffix and no arguments.
func (b *QueryBuilder) Where(start int) (string, []interface{}) {
	if len(b.conds) == 0 {
		return "", nil
	}

	var sb strings.Builder
	args := make([]interface{}, 0, len(b.conds))
	n := start
	for _, cond := range b.conds {
		sb.WriteString(" AND ")
		sb.WriteString(renumber(cond.SQL, &n))
		args = append(args, cond.Args...)
	}
	return sb.String(), args
}

// renumber replaces each ? in the fragment with the next $n placeholder.
func renumber(fragment string, n *int) string {
	var sb strings.Builder
	for _, r := range fragment {
		if r == '?' {
			sb.WriteString(fmt.Sprintf("$%d", *n))
			*n++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escapeLike escapes LIKE wildcard characters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Paginate converts a 1-based page number into LIMIT/OFFSET values,
// clamping page to 1 so a zero or negative page can never produce a
// negative offset. A page past the last row yields an empty result, not an
// error.
func Paginate(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
