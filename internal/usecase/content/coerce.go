package content

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tlwd-backend/internal/config"
	"tlwd-backend/internal/domain/entity"
)

// dateLayouts are tried in order for date fields.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Coerce converts a raw request value into the declared kind. Multipart
// forms deliver everything as text, so string input is parsed for every
// kind. A blank string for a non-string kind clears the field (nil).
func Coerce(field, kind string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && kind != config.KindString && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	switch kind {
	case config.KindString:
		switch t := v.(type) {
		case string:
			return t, nil
		case float64, bool, json.Number, int, int64:
			return fmt.Sprint(t), nil
		}
	case config.KindNumber:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, nil
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, nil
			}
		}
		return nil, invalid(field, "must be a number")
	case config.KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			if s == "on" || s == "yes" {
				return true, nil
			}
			if s == "off" || s == "no" {
				return false, nil
			}
			if b, err := strconv.ParseBool(s); err == nil {
				return b, nil
			}
		}
		return nil, invalid(field, "must be true or false")
	case config.KindList:
		switch t := v.(type) {
		case []any:
			return t, nil
		case []string:
			out := make([]any, len(t))
			for i, s := range t {
				out[i] = s
			}
			return out, nil
		case string:
			s := strings.TrimSpace(t)
			if strings.HasPrefix(s, "[") {
				var out []any
				if err := json.Unmarshal([]byte(s), &out); err != nil {
					return nil, invalid(field, "must be a JSON array")
				}
				return out, nil
			}
			out := []any{}
			for _, part := range strings.Split(s, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
			return out, nil
		}
		return nil, invalid(field, "must be a list")
	case config.KindObject:
		switch t := v.(type) {
		case map[string]any:
			return t, nil
		case string:
			var out map[string]any
			if err := json.Unmarshal([]byte(t), &out); err != nil || out == nil {
				return nil, invalid(field, "must be a JSON object")
			}
			return out, nil
		}
		return nil, invalid(field, "must be an object")
	case config.KindDate:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(time.RFC3339), nil
		case string:
			s := strings.TrimSpace(t)
			for _, layout := range dateLayouts {
				if ts, err := time.Parse(layout, s); err == nil {
					return ts.UTC().Format(time.RFC3339), nil
				}
			}
		}
		return nil, invalid(field, "must be a valid date")
	}
	return nil, invalid(field, "has an unsupported value")
}

func invalid(field, msg string) error {
	return &entity.ValidationError{Field: field, Message: field + " " + msg}
}

// blank reports whether a value counts as missing for required checks.
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}
