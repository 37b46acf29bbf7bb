// Package subscriber provides the newsletter signup endpoints and the admin
// subscriber management routes.
package subscriber

import (
	"time"

	"tlwd-backend/internal/domain/entity"
)

type DTO struct {
	ID             string     `json:"_id"`
	Email          string     `json:"email"`
	Status         string     `json:"status"`
	Source         string     `json:"source"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toDTO(s *entity.Subscriber) DTO {
	return DTO{
		ID:             s.ID,
		Email:          s.Email,
		Status:         s.Status,
		Source:         s.Source,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
		CreatedAt:      s.CreatedAt,
	}
}
