package pagination

// Metadata is the pagination block of a list response.
type Metadata struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewMetadata describes page p of total items. totalPages is
// ceil(total/limit) and zero for an empty set.
func NewMetadata(p Params, total int64) Metadata {
	pages := 0
	if total > 0 && p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Metadata{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}
