package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/metrics"
	"go-community-hub/internal/domain"
)

const msgRequestNotFound = "Service request not found."

type ServiceRequestService struct {
	requests   domain.ServiceRequestRepository
	categories domain.CategoryRepository
	stats      *stats
	log        *zap.Logger
}

func NewServiceRequestService(requests domain.ServiceRequestRepository, categories domain.CategoryRepository, st *stats, l *zap.Logger) *ServiceRequestService {
	return &ServiceRequestService{requests: requests, categories: categories, stats: st, log: l}
}

// Create 新请求一律为 InProgress
func (s *ServiceRequestService) Create(ctx context.Context, caller *auth.Claims, in CreateRequestInput) (*domain.ServiceRequest, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		c, err := s.categories.FindByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if c == nil {
			return nil, apperr.Invalid("categoryId", "Category does not exist.")
		}
	}
	sr := &domain.ServiceRequest{
		Title:       in.Title,
		Description: in.Description,
		RequesterID: caller.UserID(),
		CategoryID:  in.CategoryID,
		Status:      domain.StatusInProgress,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.requests.Create(ctx, sr); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}
	s.stats.invalidate(ctx, statsRequestsKey)
	metrics.ServiceRequests.WithLabelValues("created").Inc()
	s.log.Info("service request created", zap.Uint("request_id", sr.ID), zap.String("requester_id", sr.RequesterID))
	return s.Get(ctx, sr.ID)
}

func (s *ServiceRequestService) Get(ctx context.Context, id uint) (*domain.ServiceRequest, error) {
	sr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	if sr == nil {
		return nil, apperr.NotFound(msgRequestNotFound)
	}
	return sr, nil
}

// List status 为空返回全部，按创建时间倒序
func (s *ServiceRequestService) List(ctx context.Context, status string) ([]domain.ServiceRequest, error) {
	var f domain.ServiceRequestFilter
	if status = strings.TrimSpace(status); status != "" {
		st, ok := domain.ParseServiceStatus(status)
		if !ok {
			return nil, apperr.Invalid("status", "Status must be one of InProgress, Completed, Cancelled.")
		}
		f.Status = &st
	}
	return s.list(ctx, f)
}

func (s *ServiceRequestService) Featured(ctx context.Context) ([]domain.ServiceRequest, error) {
	st := domain.StatusInProgress
	return s.list(ctx, domain.ServiceRequestFilter{Status: &st, Limit: featuredLimit})
}

func (s *ServiceRequestService) Mine(ctx context.Context, caller *auth.Claims) ([]domain.ServiceRequest, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	return s.list(ctx, domain.ServiceRequestFilter{RequesterID: caller.UserID()})
}

func (s *ServiceRequestService) list(ctx context.Context, f domain.ServiceRequestFilter) ([]domain.ServiceRequest, error) {
	out, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return out, nil
}

// UsedCategories 至少被一个请求引用的分类
func (s *ServiceRequestService) UsedCategories(ctx context.Context) ([]domain.Category, error) {
	cs, err := s.requests.UsedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list used categories: %w", err)
	}
	return cs, nil
}

func (s *ServiceRequestService) Statistics(ctx context.Context) (*domain.ServiceRequestStats, error) {
	return loadStats(ctx, s.stats, statsRequestsKey, func(ctx context.Context) (*domain.ServiceRequestStats, error) {
		counts, err := s.requests.CountByStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("count service requests: %w", err)
		}
		st := &domain.ServiceRequestStats{
			CompletedRequests:  counts[domain.StatusCompleted],
			InProgressRequests: counts[domain.StatusInProgress],
			CancelledRequests:  counts[domain.StatusCancelled],
		}
		for _, n := range counts {
			st.TotalRequests += n
		}
		st.CompletionRate = domain.Percent(st.CompletedRequests, st.TotalRequests)
		return st, nil
	})
}

// UpdateStatus 仅请求者本人或 Admin
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, caller *auth.Claims, id uint, in StatusInput) (*domain.ServiceRequest, error) {
	return s.updateStatus(ctx, caller, auth.Requirement{}, id, in, true)
}

// AdminUpdateStatus 不做归属校验
func (s *ServiceRequestService) AdminUpdateStatus(ctx context.Context, caller *auth.Claims, id uint, in StatusInput) (*domain.ServiceRequest, error) {
	return s.updateStatus(ctx, caller, auth.AnyRole(domain.RoleAdmin), id, in, false)
}

func (s *ServiceRequestService) updateStatus(ctx context.Context, caller *auth.Claims, req auth.Requirement, id uint, in StatusInput, ownerScoped bool) (*domain.ServiceRequest, error) {
	if err := auth.Authorize(caller, req); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, apperr.Invalid("status", "Status must be one of InProgress, Completed, Cancelled.")
	}
	sr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerScoped {
		if err := auth.Authorize(caller, auth.Owner(sr.RequesterID)); err != nil {
			return nil, err
		}
	}
	from := sr.Status
	if err := sr.ApplyStatus(in.Status, in.CancelReason); err != nil {
		return nil, err
	}
	if err := s.requests.SaveStatus(ctx, sr); err != nil {
		return nil, fmt.Errorf("save service request status: %w", err)
	}
	s.stats.invalidate(ctx, statsRequestsKey)
	metrics.ServiceRequests.WithLabelValues(strings.ToLower(string(sr.Status))).Inc()
	s.log.Info("service request status changed",
		zap.Uint("request_id", sr.ID),
		zap.String("from", string(from)),
		zap.String("to", string(sr.Status)),
		zap.String("by", caller.UserID()),
	)
	return sr, nil
}

// Delete 级联删除报名、捐赠与评价，相关统计一并失效
func (s *ServiceRequestService) Delete(ctx context.Context, caller *auth.Claims, id uint) error {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return err
	}
	ok, err := s.requests.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete service request: %w", err)
	}
	if !ok {
		return apperr.NotFound(msgRequestNotFound)
	}
	s.stats.invalidate(ctx, statsRequestsKey, statsApplicationsKey, statsDonationsKey, statsFeedbackKey)
	metrics.ServiceRequests.WithLabelValues("deleted").Inc()
	s.log.Info("service request deleted", zap.Uint("request_id", id), zap.String("by", caller.UserID()))
	return nil
}
