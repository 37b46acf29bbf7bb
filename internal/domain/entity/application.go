package entity

import "time"

const (
	ApplicationPending     = "Pending"
	ApplicationShortlisted = "Shortlisted"
	ApplicationRejected    = "Rejected"
)

var ApplicationStatuses = []string{ApplicationPending, ApplicationShortlisted, ApplicationRejected}

// Application is a submission against an opportunity content record.
// OpportunityTitle and OpportunityType are filled by list queries.
type Application struct {
	ID               string
	OpportunityID    string
	OpportunityTitle string
	OpportunityType  string
	Name             string
	Email            string
	Phone            string
	CoverLetter      string
	CVURL            string
	CVHandle         string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
