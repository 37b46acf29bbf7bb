// Package dashboard serves the admin overview.
package dashboard

import (
	"net/http"

	donationhttp "tlwd-backend/internal/handler/http/donation"
	"tlwd-backend/internal/handler/http/respond"
	dashboardUC "tlwd-backend/internal/usecase/dashboard"
)

type StatsDTO struct {
	TotalDonations      float64                   `json:"totalDonations"`
	RecentDonations     []donationhttp.DTO        `json:"recentDonations"`
	TotalApplications   int64                     `json:"totalApplications"`
	PendingApplications int64                     `json:"pendingApplications"`
	SubscriberCount     int64                     `json:"subscriberCount"`
	RecentPosts         []dashboardUC.PostSummary `json:"recentPosts"`
}

type StatsHandler struct{ Svc *dashboardUC.Service }

// ServeHTTP ダッシュボード集計
func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Stats(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	out := StatsDTO{
		TotalDonations:      st.TotalDonations,
		RecentDonations:     make([]donationhttp.DTO, 0, len(st.RecentDonations)),
		TotalApplications:   st.TotalApplications,
		PendingApplications: st.PendingApplications,
		SubscriberCount:     st.SubscriberCount,
		RecentPosts:         st.RecentPosts,
	}
	for _, d := range st.RecentDonations {
		out.RecentDonations = append(out.RecentDonations, donationhttp.ToDTO(d))
	}
	if out.RecentPosts == nil {
		out.RecentPosts = []dashboardUC.PostSummary{}
	}
	respond.OK(w, "Success", out)
}

func Register(mux *http.ServeMux, svc *dashboardUC.Service, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/admin/dashboard/stats", admin(StatsHandler{svc}))
}
