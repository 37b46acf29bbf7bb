package postgres

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tlwd-backend/internal/repository"
)

func TestContentQueryBuilder_BuildWhereClause(t *testing.T) {
	qb := NewContentQueryBuilder()

	tests := []struct {
		name       string
		query      repository.ContentQuery
		wantClause string
		wantArgs   []interface{}
		wantErr    bool
	}{
		{
			name:       "type only",
			query:      repository.ContentQuery{Type: "team"},
			wantClause: "WHERE content_type = $1",
			wantArgs:   []interface{}{"team"},
		},
		{
			name:       "statuses",
			query:      repository.ContentQuery{Type: "blog", Statuses: []string{"Published", "published"}},
			wantClause: "WHERE content_type = $1 AND status IN ($2, $3)",
			wantArgs:   []interface{}{"blog", "Published", "published"},
		},
		{
			name: "equals sorted by key",
			query: repository.ContentQuery{Type: "team", Equals: map[string]string{
				"type": "Director", "category": "Board",
			}},
			wantClause: "WHERE content_type = $1 AND data->>($2::text) = $3 AND data->>($4::text) = $5",
			wantArgs:   []interface{}{"team", "category", "Board", "type", "Director"},
		},
		{
			name: "search escapes wildcards",
			query: repository.ContentQuery{
				Type: "blog", SearchFields: []string{"title", "content"}, SearchTerm: "50%_off",
			},
			wantClause: "WHERE content_type = $1 AND (data->>($2::text) ILIKE $3 OR data->>($4::text) ILIKE $5)",
			wantArgs:   []interface{}{"blog", "title", `%50\%\_off%`, "content", `%50\%\_off%`},
		},
		{
			name:    "invalid equals key",
			query:   repository.ContentQuery{Type: "team", Equals: map[string]string{"a'b": "x"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := qb.BuildWhereClause(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContentQueryBuilder_BuildOrderBy(t *testing.T) {
	qb := NewContentQueryBuilder()

	tests := []struct {
		name       string
		query      repository.ContentQuery
		wantClause string
		wantArgs   []interface{}
		wantErr    bool
	}{
		{
			name:       "default newest first",
			query:      repository.ContentQuery{},
			wantClause: "ORDER BY created_at DESC, id DESC",
		},
		{
			name:       "column",
			query:      repository.ContentQuery{SortField: "updatedAt", SortDesc: true},
			wantClause: "ORDER BY updated_at DESC, id DESC",
		},
		{
			name:       "json field descending",
			query:      repository.ContentQuery{SortField: "year", SortDesc: true},
			wantClause: "ORDER BY data->($4::text) DESC, created_at DESC",
			wantArgs:   []interface{}{"year"},
		},
		{
			name:       "json field ascending",
			query:      repository.ContentQuery{SortField: "order"},
			wantClause: "ORDER BY data->($4::text) ASC, created_at DESC",
			wantArgs:   []interface{}{"order"},
		},
		{
			name:    "invalid",
			query:   repository.ContentQuery{SortField: "1; DROP"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := qb.BuildOrderBy(tt.query, 4)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEscapeILIKE(t *testing.T) {
	if got := EscapeILIKE(`a\b%c_d`); got != `a\\b\%c\_d` {
		t.Errorf("EscapeILIKE = %q", got)
	}
}
