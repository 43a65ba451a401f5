package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/metrics"
	"go-community-hub/internal/domain"
)

const (
	msgFeedbackNotAllowed = "Service request not found or not completed."
	msgAlreadyReviewed    = "You have already left feedback for this service request."
	defaultTestimonials   = 6
)

type FeedbackService struct {
	feedback domain.FeedbackRepository
	requests domain.ServiceRequestRepository
	stats    *stats
	log      *zap.Logger
}

func NewFeedbackService(feedback domain.FeedbackRepository, requests domain.ServiceRequestRepository, st *stats, l *zap.Logger) *FeedbackService {
	return &FeedbackService{feedback: feedback, requests: requests, stats: st, log: l}
}

// Leave 仅可评价已完成的请求，每人每个请求一条
func (s *FeedbackService) Leave(ctx context.Context, caller *auth.Claims, in FeedbackInput) (*domain.Feedback, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sr, err := s.requests.FindByID(ctx, in.ServiceRequestID)
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	if sr == nil || sr.Status != domain.StatusCompleted {
		return nil, apperr.Business(msgFeedbackNotAllowed)
	}
	exists, err := s.feedback.Exists(ctx, sr.ID, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("check feedback: %w", err)
	}
	if exists {
		return nil, apperr.Business(msgAlreadyReviewed)
	}
	f := &domain.Feedback{
		ServiceRequestID: sr.ID,
		AuthorID:         caller.UserID(),
		Rating:           in.Rating,
		Comment:          in.Comment,
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Business(msgAlreadyReviewed)
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	s.stats.invalidate(ctx, statsFeedbackKey)
	metrics.Feedback.Inc()
	s.log.Info("feedback left", zap.Uint("feedback_id", f.ID), zap.Uint("request_id", sr.ID), zap.Int("rating", f.Rating))
	return f, nil
}

func (s *FeedbackService) ByRequest(ctx context.Context, caller *auth.Claims, requestID uint) ([]domain.Feedback, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	out, err := s.feedback.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}

func (s *FeedbackService) All(ctx context.Context, caller *auth.Claims) ([]domain.Feedback, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	out, err := s.feedback.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}

// Testimonials 高分（>=4）评价，最新在前
func (s *FeedbackService) Testimonials(ctx context.Context, caller *auth.Claims, limit int) ([]domain.Feedback, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	out, err := s.feedback.Testimonials(ctx, domain.TestimonialRating, clampLimit(limit, defaultTestimonials))
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return out, nil
}

func (s *FeedbackService) Statistics(ctx context.Context, caller *auth.Claims) (*domain.FeedbackStats, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	return loadStats(ctx, s.stats, statsFeedbackKey, func(ctx context.Context) (*domain.FeedbackStats, error) {
		counts, err := s.feedback.RatingCounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("count feedback: %w", err)
		}
		st := &domain.FeedbackStats{RatingDistribution: []domain.RatingBucket{}}
		var sum int64
		for rating, n := range counts {
			st.TotalFeedback += n
			sum += int64(rating) * n
		}
		for rating, n := range counts {
			st.RatingDistribution = append(st.RatingDistribution, domain.RatingBucket{
				Rating:     rating,
				Count:      n,
				Percentage: domain.Percent(n, st.TotalFeedback),
			})
		}
		sort.Slice(st.RatingDistribution, func(i, j int) bool {
			return st.RatingDistribution[i].Rating < st.RatingDistribution[j].Rating
		})
		if st.TotalFeedback > 0 {
			st.AverageRating = float64(sum) / float64(st.TotalFeedback)
		}
		return st, nil
	})
}
