package repo

import (
	"context"

	"gorm.io/gorm"

	"go-community-hub/internal/domain"
)

type DonationRepo struct{ db *gorm.DB }

func NewDonationRepo(db *gorm.DB) *DonationRepo { return &DonationRepo{db: db} }

func (r *DonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	return r.db.WithContext(ctx).Omit("ServiceRequest", "Donor").Create(d).Error
}

func (r *DonationRepo) ListByRequest(ctx context.Context, requestID uint) ([]domain.Donation, error) {
	var out []domain.Donation
	err := r.db.WithContext(ctx).Preload("Donor").
		Where("service_request_id = ?", requestID).
		Order("donated_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *DonationRepo) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	var out []domain.Donation
	err := r.db.WithContext(ctx).Preload("ServiceRequest").
		Where("donor_id = ?", donorID).
		Order("donated_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *DonationRepo) ListAll(ctx context.Context) ([]domain.Donation, error) {
	var out []domain.Donation
	err := r.db.WithContext(ctx).Preload("Donor").Preload("ServiceRequest").
		Order("donated_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *DonationRepo) Totals(ctx context.Context) (domain.DonationStats, error) {
	var row struct {
		N      int64
		Total  float64
		Donors int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Select("COUNT(*) AS n, COALESCE(SUM(amount), 0) AS total, COUNT(DISTINCT donor_id) AS donors").
		Scan(&row).Error
	if err != nil {
		return domain.DonationStats{}, err
	}
	st := domain.DonationStats{TotalDonations: row.N, TotalAmount: row.Total, UniqueDonors: row.Donors}
	if row.N > 0 {
		st.AverageDonation = row.Total / float64(row.N)
	}
	return st, nil
}

// TopDonors 按累计金额降序
func (r *DonationRepo) TopDonors(ctx context.Context, limit int) ([]domain.DonorRank, error) {
	var out []domain.DonorRank
	err := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Select("donor_id, SUM(amount) AS total_amount, COUNT(*) AS donation_count").
		Group("donor_id").
		Order("total_amount DESC").Order("donor_id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
