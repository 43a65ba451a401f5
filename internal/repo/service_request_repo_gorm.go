package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-community-hub/internal/domain"
)

type ServiceRequestRepo struct{ db *gorm.DB }

func NewServiceRequestRepo(db *gorm.DB) *ServiceRequestRepo { return &ServiceRequestRepo{db: db} }

func (r *ServiceRequestRepo) Create(ctx context.Context, sr *domain.ServiceRequest) error {
	return r.db.WithContext(ctx).Omit("Requester", "Category").Create(sr).Error
}

func (r *ServiceRequestRepo) FindByID(ctx context.Context, id uint) (*domain.ServiceRequest, error) {
	var sr domain.ServiceRequest
	err := r.db.WithContext(ctx).Preload("Requester").Preload("Category").First(&sr, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (r *ServiceRequestRepo) List(ctx context.Context, f domain.ServiceRequestFilter) ([]domain.ServiceRequest, error) {
	q := r.db.WithContext(ctx).Model(&domain.ServiceRequest{}).Preload("Requester").Preload("Category")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []domain.ServiceRequest
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *ServiceRequestRepo) SaveStatus(ctx context.Context, sr *domain.ServiceRequest) error {
	// map 形式才能把 cancel_reason 写回 NULL
	return r.db.WithContext(ctx).Model(sr).
		Updates(map[string]any{"status": sr.Status, "cancel_reason": sr.CancelReason}).Error
}

func (r *ServiceRequestRepo) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []any{&domain.Feedback{}, &domain.Donation{}, &domain.VolunteerApplication{}} {
			if err := tx.Where("service_request_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&domain.ServiceRequest{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *ServiceRequestRepo) UsedCategories(ctx context.Context) ([]domain.Category, error) {
	var cs []domain.Category
	db := r.db.WithContext(ctx)
	used := db.Model(&domain.ServiceRequest{}).Select("category_id").Where("category_id IS NOT NULL")
	err := db.Where("id IN (?)", used).
		Order("id").
		Find(&cs).Error
	return cs, err
}

func (r *ServiceRequestRepo) CountByStatus(ctx context.Context) (map[domain.ServiceStatus]int64, error) {
	var rows []struct {
		Status domain.ServiceStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.ServiceRequest{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ServiceStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
