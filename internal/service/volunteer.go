package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/metrics"
	"go-community-hub/internal/domain"
)

const (
	msgAlreadyApplied  = "You have already applied to this service request."
	msgNotOpenToApply  = "Service request not found or not open for applications."
	msgApplicationGone = "Volunteer application not found."
)

type VolunteerService struct {
	apps     domain.VolunteerApplicationRepository
	requests domain.ServiceRequestRepository
	users    domain.UserRepository
	stats    *stats
	log      *zap.Logger
}

func NewVolunteerService(apps domain.VolunteerApplicationRepository, requests domain.ServiceRequestRepository, users domain.UserRepository, st *stats, l *zap.Logger) *VolunteerService {
	return &VolunteerService{apps: apps, requests: requests, users: users, stats: st, log: l}
}

// Apply 同一志愿者对同一请求只能报名一次，且请求须为 InProgress
func (s *VolunteerService) Apply(ctx context.Context, caller *auth.Claims, in ApplyInput) (*domain.VolunteerApplication, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleVolunteer)); err != nil {
		return nil, err
	}
	if in.ServiceRequestID == 0 {
		return nil, apperr.Invalid("serviceRequestId", "Service request is required.")
	}
	exists, err := s.apps.Exists(ctx, in.ServiceRequestID, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("check application: %w", err)
	}
	if exists {
		return nil, apperr.Business(msgAlreadyApplied)
	}
	sr, err := s.requests.FindByID(ctx, in.ServiceRequestID)
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	if sr == nil || !sr.OpenForContributions() {
		return nil, apperr.Business(msgNotOpenToApply)
	}
	a := &domain.VolunteerApplication{
		ServiceRequestID: sr.ID,
		VolunteerID:      caller.UserID(),
		Status:           domain.ApplicationPending,
		AppliedAt:        time.Now().UTC(),
	}
	if err := s.apps.Create(ctx, a); err != nil {
		// 并发重复报名由唯一索引拦下
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Business(msgAlreadyApplied)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.stats.invalidate(ctx, statsApplicationsKey)
	metrics.Applications.WithLabelValues("applied").Inc()
	s.log.Info("volunteer applied", zap.Uint("application_id", a.ID), zap.Uint("request_id", sr.ID), zap.String("volunteer_id", a.VolunteerID))
	return a, nil
}

// ByRequest 仅请求者本人或 Admin 可见
func (s *VolunteerService) ByRequest(ctx context.Context, caller *auth.Claims, requestID uint) ([]domain.VolunteerApplication, error) {
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
	out, err := s.apps.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *VolunteerService) Mine(ctx context.Context, caller *auth.Claims) ([]domain.VolunteerApplication, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleVolunteer)); err != nil {
		return nil, err
	}
	out, err := s.apps.ListByVolunteer(ctx, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

// UpdateStatus 由请求者或 Admin 直接设置，不校验流转方向
func (s *VolunteerService) UpdateStatus(ctx context.Context, caller *auth.Claims, id uint, in ApplicationStatusInput) (*domain.VolunteerApplication, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, apperr.Invalid("status", "Status must be one of Pending, Accepted, Rejected.")
	}
	a, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	if a == nil {
		return nil, apperr.NotFound(msgApplicationGone)
	}
	owner := ""
	if a.ServiceRequest != nil {
		owner = a.ServiceRequest.RequesterID
	}
	if err := auth.Authorize(caller, auth.Owner(owner)); err != nil {
		return nil, err
	}
	a.Status = in.Status
	if err := s.apps.SaveStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("save application status: %w", err)
	}
	s.stats.invalidate(ctx, statsApplicationsKey)
	metrics.Applications.WithLabelValues(strings.ToLower(string(a.Status))).Inc()
	s.log.Info("application status changed", zap.Uint("application_id", a.ID), zap.String("status", string(a.Status)), zap.String("by", caller.UserID()))
	return a, nil
}

func (s *VolunteerService) Statistics(ctx context.Context, caller *auth.Claims) (*domain.ApplicationStats, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	return loadStats(ctx, s.stats, statsApplicationsKey, func(ctx context.Context) (*domain.ApplicationStats, error) {
		counts, err := s.apps.CountByStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("count applications: %w", err)
		}
		st := &domain.ApplicationStats{
			AcceptedApplications: counts[domain.ApplicationAccepted],
			PendingApplications:  counts[domain.ApplicationPending],
			RejectedApplications: counts[domain.ApplicationRejected],
		}
		for _, n := range counts {
			st.TotalApplications += n
		}
		st.AcceptanceRate = domain.Percent(st.AcceptedApplications, st.TotalApplications)
		return st, nil
	})
}

// TopVolunteers 按已接受报名数排行
func (s *VolunteerService) TopVolunteers(ctx context.Context, caller *auth.Claims, limit int) ([]domain.VolunteerRank, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	ranks, err := s.apps.TopVolunteers(ctx, clampLimit(limit, defaultTopLimit))
	if err != nil {
		return nil, fmt.Errorf("top volunteers: %w", err)
	}
	ids := make([]string, len(ranks))
	for i := range ranks {
		ids[i] = ranks[i].VolunteerID
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, fmt.Errorf("load volunteers: %w", err)
	}
	for i := range ranks {
		ranks[i].Volunteer = refs[ranks[i].VolunteerID]
	}
	return ranks, nil
}
