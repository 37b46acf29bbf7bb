// Package bind decodes request bodies into handler input structs.
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tlwd-backend/internal/domain/entity"
)

// ErrInvalidBody is returned for a body that is not a JSON object.
var ErrInvalidBody = &entity.ValidationError{Field: "body", Message: "Invalid request body"}

// ErrBodyTooLarge is returned when http.MaxBytesReader cut the body short.
var ErrBodyTooLarge = &entity.ValidationError{Field: "body", Message: "Request body too large"}

// JSON decodes r's body into v. An empty body leaves v untouched, so handlers
// can report missing fields with their own wording.
func JSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case isTooLarge(err):
		return ErrBodyTooLarge
	default:
		return ErrInvalidBody
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
