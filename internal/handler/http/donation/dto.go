// Package donation provides the public checkout endpoints and the admin
// donation listing and export.
package donation

import (
	"time"

	"tlwd-backend/internal/domain/entity"
)

// DTO is a donation as listed in the admin.
type DTO struct {
	ID        string    `json:"_id"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToDTO shapes d for JSON.
func ToDTO(d *entity.Donation) DTO {
	return DTO{
		ID:        d.ID,
		Reference: d.Reference,
		Amount:    d.Amount,
		Email:     d.Email,
		Name:      d.Name,
		Method:    d.Method,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
