package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/metrics"
	"go-community-hub/internal/domain"
)

const msgNotOpenToDonate = "Service request not found or not open for donations."

type DonationService struct {
	donations domain.DonationRepository
	requests  domain.ServiceRequestRepository
	users     domain.UserRepository
	stats     *stats
	log       *zap.Logger
}

func NewDonationService(donations domain.DonationRepository, requests domain.ServiceRequestRepository, users domain.UserRepository, st *stats, l *zap.Logger) *DonationService {
	return &DonationService{donations: donations, requests: requests, users: users, stats: st, log: l}
}

// Donate 金额须为正，请求须为 InProgress；金额按分取整
func (s *DonationService) Donate(ctx context.Context, caller *auth.Claims, in DonateInput) (*domain.Donation, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleDonor)); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	amount := math.Round(in.Amount*100) / 100
	if amount <= 0 {
		return nil, apperr.Invalid("amount", "Donation amount must be positive.")
	}
	sr, err := s.requests.FindByID(ctx, in.ServiceRequestID)
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	if sr == nil || !sr.OpenForContributions() {
		return nil, apperr.Business(msgNotOpenToDonate)
	}
	d := &domain.Donation{
		ServiceRequestID: sr.ID,
		DonorID:          caller.UserID(),
		Amount:           amount,
		DonatedAt:        time.Now().UTC(),
	}
	if err := s.donations.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	s.stats.invalidate(ctx, statsDonationsKey)
	metrics.Donations.Inc()
	metrics.DonatedAmount.Add(amount)
	s.log.Info("donation received", zap.Uint("donation_id", d.ID), zap.Uint("request_id", sr.ID), zap.String("donor_id", d.DonorID), zap.Float64("amount", amount))
	return d, nil
}

// ByRequest 仅请求者本人或 Admin 可见
func (s *DonationService) ByRequest(ctx context.Context, caller *auth.Claims, requestID uint) ([]domain.Donation, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	sr, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	if sr == nil {
		return nil, apperr.NotFound(msgRequestNotFound)
	}
	if err := auth.Authorize(caller, auth.Owner(sr.RequesterID)); err != nil {
		return nil, err
	}
	out, err := s.donations.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}

func (s *DonationService) Mine(ctx context.Context, caller *auth.Claims) ([]domain.Donation, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	out, err := s.donations.ListByDonor(ctx, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}

func (s *DonationService) All(ctx context.Context, caller *auth.Claims) ([]domain.Donation, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	out, err := s.donations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}

func (s *DonationService) Statistics(ctx context.Context) (*domain.DonationStats, error) {
	return loadStats(ctx, s.stats, statsDonationsKey, func(ctx context.Context) (*domain.DonationStats, error) {
		st, err := s.donations.Totals(ctx)
		if err != nil {
			return nil, fmt.Errorf("donation totals: %w", err)
		}
		return &st, nil
	})
}

func (s *DonationService) TopDonors(ctx context.Context, limit int) ([]domain.DonorRank, error) {
	ranks, err := s.donations.TopDonors(ctx, clampLimit(limit, defaultTopLimit))
	if err != nil {
		return nil, fmt.Errorf("top donors: %w", err)
	}
	ids := make([]string, len(ranks))
	for i := range ranks {
		ids[i] = ranks[i].DonorID
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, fmt.Errorf("load donors: %w", err)
	}
	for i := range ranks {
		ranks[i].Donor = refs[ranks[i].DonorID]
	}
	return ranks, nil
}
