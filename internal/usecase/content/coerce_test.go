package content

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/config"
	"tlwd-backend/internal/domain/entity"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind string
		in   any
		want any
	}{
		{"string", config.KindString, "hello", "hello"},
		{"string from number", config.KindString, float64(3), "3"},
		{"number from form", config.KindNumber, " 2024 ", float64(2024)},
		{"number from json", config.KindNumber, json.Number("1.5"), 1.5},
		{"number from int", config.KindNumber, 7, float64(7)},
		{"blank number clears", config.KindNumber, "", nil},
		{"bool true", config.KindBool, "true", true},
		{"bool on", config.KindBool, "on", true},
		{"bool no", config.KindBool, "No", false},
		{"list json", config.KindList, `["a","b"]`, []any{"a", "b"}},
		{"list csv", config.KindList, "a, b,,c", []any{"a", "b", "c"}},
		{"list strings", config.KindList, []string{"x"}, []any{"x"}},
		{"object json", config.KindObject, `{"twitter":"@tlwd"}`, map[string]any{"twitter": "@tlwd"}},
		{"date only", config.KindDate, "2025-03-01", "2025-03-01T00:00:00Z"},
		{"date rfc3339", config.KindDate, "2025-03-01T10:00:00+01:00", "2025-03-01T09:00:00Z"},
		{"date time", config.KindDate, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "2025-01-02T03:04:05Z"},
		{"nil", config.KindString, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce("f", tt.kind, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Invalid(t *testing.T) {
	tests := []struct {
		name string
		kind string
		in   any
		msg  string
	}{
		{"number", config.KindNumber, "ten", "year must be a number"},
		{"bool", config.KindBool, "maybe", "year must be true or false"},
		{"list json", config.KindList, "[oops", "year must be a JSON array"},
		{"object", config.KindObject, "[1]", "year must be a JSON object"},
		{"date", config.KindDate, "next week", "year must be a valid date"},
		{"list type", config.KindList, 42.0, "year must be a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce("year", tt.kind, tt.in)
			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "year", ve.Field)
			assert.Equal(t, tt.msg, ve.Message)
		})
	}
}
