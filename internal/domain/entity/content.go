package entity

import "time"

// ContentRecord is a single item of a schema-driven content type
// (team member, project, blog post, hero slide, ...).
//
// Fields holds the type-specific attributes keyed by their JSON names.
// Status is kept outside Fields so it can be indexed and filtered.
type ContentRecord struct {
	ID        string
	Type      string
	Status    string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// String returns Fields[key] as a string, or "" when missing or not a string.
func (r *ContentRecord) String(key string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	s, _ := r.Fields[key].(string)
	return s
}

// Clone returns a copy with an independent Fields map.
func (r *ContentRecord) Clone() *ContentRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		cp.Fields[k] = v
	}
	return &cp
}
