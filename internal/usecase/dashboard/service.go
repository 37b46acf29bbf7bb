// Package dashboard aggregates the admin overview counters.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

// RecentLimit is the number of recent donations and posts returned.
const RecentLimit = 5

// PostSummary is the short form of a blog post on the dashboard.
type PostSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Views     float64   `json:"views"`
}

// Stats is the dashboard payload. RecentDonations holds entities; the
// handler shapes them for JSON.
type Stats struct {
	TotalDonations      float64
	RecentDonations     []*entity.Donation
	TotalApplications   int64
	PendingApplications int64
	SubscriberCount     int64
	RecentPosts         []PostSummary
}

type Service struct {
	Donations    repository.DonationRepository
	Applications repository.ApplicationRepository
	Subscribers  repository.SubscriberRepository
	Content      repository.ContentRepository
}

// Stats runs the independent queries concurrently and fails on the first error.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.Donations.SumSuccessful(ctx)
		if err != nil {
			return fmt.Errorf("sum donations: %w", err)
		}
		st.TotalDonations = total
		return nil
	})
	g.Go(func() error {
		recent, err := s.Donations.List(ctx, repository.DonationFilters{}, RecentLimit, 0)
		if err != nil {
			return fmt.Errorf("recent donations: %w", err)
		}
		st.RecentDonations = recent
		return nil
	})
	g.Go(func() error {
		n, err := s.Applications.Count(ctx, "")
		if err != nil {
			return fmt.Errorf("count applications: %w", err)
		}
		st.TotalApplications = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Applications.Count(ctx, entity.ApplicationPending)
		if err != nil {
			return fmt.Errorf("count pending applications: %w", err)
		}
		st.PendingApplications = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Subscribers.Count(ctx, entity.SubscriberActive)
		if err != nil {
			return fmt.Errorf("count subscribers: %w", err)
		}
		st.SubscriberCount = n
		return nil
	})
	g.Go(func() error {
		posts, err := s.Content.List(ctx, repository.ContentQuery{
			Type:     "blog",
			Statuses: entity.PublicStatusSet("Published"),
			Limit:    RecentLimit,
		})
		if err != nil {
			return fmt.Errorf("recent posts: %w", err)
		}
		st.RecentPosts = make([]PostSummary, 0, len(posts))
		for _, p := range posts {
			views, _ := p.Fields["views"].(float64)
			st.RecentPosts = append(st.RecentPosts, PostSummary{
				ID:        p.ID,
				Title:     p.String("title"),
				CreatedAt: p.CreatedAt,
				Views:     views,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
