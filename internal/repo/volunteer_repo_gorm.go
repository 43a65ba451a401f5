package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-community-hub/internal/domain"
)

type VolunteerApplicationRepo struct{ db *gorm.DB }

func NewVolunteerApplicationRepo(db *gorm.DB) *VolunteerApplicationRepo {
	return &VolunteerApplicationRepo{db: db}
}

func (r *VolunteerApplicationRepo) Create(ctx context.Context, a *domain.VolunteerApplication) error {
	return translate(r.db.WithContext(ctx).Omit("ServiceRequest", "Volunteer").Create(a).Error)
}

func (r *VolunteerApplicationRepo) FindByID(ctx context.Context, id uint) (*domain.VolunteerApplication, error) {
	var a domain.VolunteerApplication
	err := r.db.WithContext(ctx).Preload("ServiceRequest").Preload("Volunteer").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *VolunteerApplicationRepo) Exists(ctx context.Context, requestID uint, volunteerID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.VolunteerApplication{}).
		Where("service_request_id = ? AND volunteer_id = ?", requestID, volunteerID).
		Count(&n).Error
	return n > 0, err
}

func (r *VolunteerApplicationRepo) ListByRequest(ctx context.Context, requestID uint) ([]domain.VolunteerApplication, error) {
	var out []domain.VolunteerApplication
	err := r.db.WithContext(ctx).Preload("Volunteer").
		Where("service_request_id = ?", requestID).
		Order("applied_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *VolunteerApplicationRepo) ListByVolunteer(ctx context.Context, volunteerID string) ([]domain.VolunteerApplication, error) {
	var out []domain.VolunteerApplication
	err := r.db.WithContext(ctx).Preload("ServiceRequest").
		Where("volunteer_id = ?", volunteerID).
		Order("applied_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *VolunteerApplicationRepo) SaveStatus(ctx context.Context, a *domain.VolunteerApplication) error {
	return r.db.WithContext(ctx).Model(&domain.VolunteerApplication{}).
		Where("id = ?", a.ID).Update("status", a.Status).Error
}

func (r *VolunteerApplicationRepo) CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int64, error) {
	var rows []struct {
		Status domain.ApplicationStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.VolunteerApplication{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// TopVolunteers 按已接受的报名数降序
func (r *VolunteerApplicationRepo) TopVolunteers(ctx context.Context, limit int) ([]domain.VolunteerRank, error) {
	var out []domain.VolunteerRank
	err := r.db.WithContext(ctx).Model(&domain.VolunteerApplication{}).
		Select("volunteer_id, COUNT(*) AS completed_services").
		Where("status = ?", domain.ApplicationAccepted).
		Group("volunteer_id").
		Order("completed_services DESC").Order("volunteer_id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
