// Package content provides the HTTP handlers shared by every schema-driven
// content type, plus blog comments.
package content

import (
	"time"

	"tlwd-backend/internal/domain/entity"
)

// Record flattens a ContentRecord into the object clients read: the type's
// fields at the top level next to _id, status and timestamps.
func Record(rec *entity.ContentRecord) map[string]any {
	if rec == nil {
		return nil
	}
	out := make(map[string]any, len(rec.Fields)+5)
	for k, v := range rec.Fields {
		out[k] = v
	}
	out["_id"] = rec.ID
	out["id"] = rec.ID
	if rec.Status != "" {
		out["status"] = rec.Status
	}
	out["createdAt"] = rec.CreatedAt
	out["updatedAt"] = rec.UpdatedAt
	return out
}

// Records flattens a slice; the result is never nil so lists encode as [].
func Records(recs []*entity.ContentRecord) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, Record(r))
	}
	return out
}

// CommentDTO is a blog comment as returned by the API.
type CommentDTO struct {
	ID        string    `json:"_id"`
	PostID    string    `json:"blogId"`
	User      string    `json:"user"`
	Email     string    `json:"email,omitempty"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func commentDTO(c *entity.Comment, withEmail bool) CommentDTO {
	d := CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		User:      c.User,
		Text:      c.Text,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if withEmail {
		d.Email = c.Email
	}
	return d
}

func commentDTOs(items []*entity.Comment, withEmail bool) []CommentDTO {
	out := make([]CommentDTO, 0, len(items))
	for _, c := range items {
		out = append(out, commentDTO(c, withEmail))
	}
	return out
}
