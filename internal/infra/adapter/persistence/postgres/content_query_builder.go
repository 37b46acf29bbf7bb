// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tlwd-backend/internal/repository"
)

// jsonKeyPattern guards field names used as JSON keys. Keys are always bound
// as parameters; the pattern only rejects garbage early.
var jsonKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// columnSorts maps record attributes that live in real columns.
var columnSorts = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
}

// ContentQueryBuilder builds WHERE and ORDER BY clauses for content_records.
// The WHERE clause is shared between COUNT and SELECT queries.
type ContentQueryBuilder struct{}

func NewContentQueryBuilder() *ContentQueryBuilder {
	return &ContentQueryBuilder{}
}

// BuildWhereClause returns the WHERE clause for q and its arguments.
// Placeholders start at $1.
func (qb *ContentQueryBuilder) BuildWhereClause(q repository.ContentQuery) (clause string, args []interface{}, err error) {
	conditions := []string{"content_type = $1"}
	args = append(args, q.Type)
	next := 2

	if len(q.Statuses) > 0 {
		ph := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			ph = append(ph, fmt.Sprintf("$%d", next))
			args = append(args, s)
			next++
		}
		conditions = append(conditions, "status IN ("+strings.Join(ph, ", ")+")")
	}

	// map iteration order is random; sort so the SQL text is stable
	keys := make([]string, 0, len(q.Equals))
	for k := range q.Equals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !jsonKeyPattern.MatchString(k) {
			return "", nil, fmt.Errorf("invalid filter field %q", k)
		}
		conditions = append(conditions, fmt.Sprintf("data->>($%d::text) = $%d", next, next+1))
		args = append(args, k, q.Equals[k])
		next += 2
	}

	if q.SearchTerm != "" && len(q.SearchFields) > 0 {
		term := "%" + EscapeILIKE(q.SearchTerm) + "%"
		ors := make([]string, 0, len(q.SearchFields))
		for _, f := range q.SearchFields {
			if !jsonKeyPattern.MatchString(f) {
				return "", nil, fmt.Errorf("invalid search field %q", f)
			}
			ors = append(ors, fmt.Sprintf("data->>($%d::text) ILIKE $%d", next, next+1))
			args = append(args, f, term)
			next += 2
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

// BuildOrderBy returns the ORDER BY clause. A JSON sort key is bound as the
// placeholder numbered next, in which case the key is returned in args.
// created_at DESC is always the tiebreaker.
func (qb *ContentQueryBuilder) BuildOrderBy(q repository.ContentQuery, next int) (clause string, args []interface{}, err error) {
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}

	field := q.SortField
	if field == "" {
		return "ORDER BY created_at DESC, id DESC", nil, nil
	}
	if col, ok := columnSorts[field]; ok {
		return fmt.Sprintf("ORDER BY %s %s, id DESC", col, dir), nil, nil
	}
	if !jsonKeyPattern.MatchString(field) {
		return "", nil, fmt.Errorf("invalid sort field %q", field)
	}
	return fmt.Sprintf("ORDER BY data->($%d::text) %s, created_at DESC", next, dir), []interface{}{field}, nil
}

// EscapeILIKE escapes the ILIKE wildcards % and _ and the escape character itself.
func EscapeILIKE(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
