package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
	dashUC "tlwd-backend/internal/usecase/dashboard"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

type stubDonations struct {
	repository.DonationRepository
	sumErr error
}

func (s stubDonations) SumSuccessful(context.Context) (float64, error) { return 12500, s.sumErr }
func (stubDonations) List(_ context.Context, _ repository.DonationFilters, limit, _ int) ([]*entity.Donation, error) {
	return []*entity.Donation{{Reference: "R1"}}, nil
}

type stubApps struct {
	repository.ApplicationRepository
}

func (stubApps) Count(_ context.Context, status string) (int64, error) {
	if status == entity.ApplicationPending {
		return 2, nil
	}
	return 7, nil
}

type stubSubs struct {
	repository.SubscriberRepository
}

func (stubSubs) Count(_ context.Context, status string) (int64, error) {
	if status != entity.SubscriberActive {
		return 0, errors.New("unexpected status")
	}
	return 40, nil
}

type stubContent struct {
	repository.ContentRepository
	q repository.ContentQuery
}

func (s *stubContent) List(_ context.Context, q repository.ContentQuery) ([]*entity.ContentRecord, error) {
	s.q = q
	return []*entity.ContentRecord{{
		ID: "b1", Type: "blog", Status: "Published",
		Fields:    map[string]any{"title": "Hello", "views": float64(9)},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, nil
}

/*────────────────────  テスト  ────────────────────*/

func TestStats(t *testing.T) {
	content := &stubContent{}
	svc := &dashUC.Service{Donations: stubDonations{}, Applications: stubApps{}, Subscribers: stubSubs{}, Content: content}

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(12500), st.TotalDonations)
	assert.Len(t, st.RecentDonations, 1)
	assert.Equal(t, int64(7), st.TotalApplications)
	assert.Equal(t, int64(2), st.PendingApplications)
	assert.Equal(t, int64(40), st.SubscriberCount)
	require.Len(t, st.RecentPosts, 1)
	assert.Equal(t, dashUC.PostSummary{ID: "b1", Title: "Hello", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Views: 9}, st.RecentPosts[0])
	assert.Equal(t, dashUC.RecentLimit, content.q.Limit)
	assert.Contains(t, content.q.Statuses, "published")
}

func TestStats_Error(t *testing.T) {
	svc := &dashUC.Service{
		Donations:    stubDonations{sumErr: errors.New("db down")},
		Applications: stubApps{},
		Subscribers:  stubSubs{},
		Content:      &stubContent{},
	}
	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
