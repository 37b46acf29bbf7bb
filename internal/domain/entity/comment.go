package entity

import "time"

const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

// Comment is a reader comment on a blog post. Only approved comments
// are shown publicly.
type Comment struct {
	ID        string
	PostID    string
	User      string
	Email     string
	Text      string
	Status    string
	CreatedAt time.Time
}
