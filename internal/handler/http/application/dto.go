// Package application provides the public apply endpoint and the admin
// application review routes.
package application

import (
	"time"

	"tlwd-backend/internal/domain/entity"
)

type OpportunityRef struct {
	ID    string `json:"_id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

type DTO struct {
	ID          string         `json:"_id"`
	Opportunity OpportunityRef `json:"opportunity"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	CoverLetter string         `json:"coverLetter,omitempty"`
	CV          string         `json:"cv,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toDTO(a *entity.Application) DTO {
	return DTO{
		ID: a.ID,
		Opportunity: OpportunityRef{
			ID:    a.OpportunityID,
			Title: a.OpportunityTitle,
			Type:  a.OpportunityType,
		},
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		CoverLetter: a.CoverLetter,
		CV:          a.CVURL,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
