package repo

import (
	"context"

	"gorm.io/gorm"

	"go-community-hub/internal/domain"
)

type FeedbackRepo struct{ db *gorm.DB }

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func (r *FeedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	return translate(r.db.WithContext(ctx).Omit("ServiceRequest", "Author").Create(f).Error)
}

func (r *FeedbackRepo) Exists(ctx context.Context, requestID uint, authorID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Feedback{}).
		Where("service_request_id = ? AND author_id = ?", requestID, authorID).
		Count(&n).Error
	return n > 0, err
}

func (r *FeedbackRepo) ListByRequest(ctx context.Context, requestID uint) ([]domain.Feedback, error) {
	var out []domain.Feedback
	err := r.db.WithContext(ctx).Preload("Author").
		Where("service_request_id = ?", requestID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *FeedbackRepo) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	var out []domain.Feedback
	err := r.db.WithContext(ctx).Preload("Author").Preload("ServiceRequest").
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *FeedbackRepo) Testimonials(ctx context.Context, minRating, limit int) ([]domain.Feedback, error) {
	var out []domain.Feedback
	err := r.db.WithContext(ctx).Preload("Author").Preload("ServiceRequest").
		Where("rating >= ?", minRating).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *FeedbackRepo) RatingCounts(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Rating int
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Feedback{}).
		Select("rating, COUNT(*) AS n").Group("rating").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Rating] = row.N
	}
	return out, nil
}
