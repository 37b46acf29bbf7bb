package pathutil

import (
	"net/http"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
)

// ErrInvalidID is returned when a path id is not a UUID.
var ErrInvalidID = &entity.ValidationError{Field: "id", Message: "Invalid id"}

// ID returns the {name} path value of r after checking it is a UUID.
//
//	id, err := pathutil.ID(r, "id")
//	// GET /api/team/not-a-uuid → ErrInvalidID
func ID(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	parsed, err := uuid.Parse(v)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}
