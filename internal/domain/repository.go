package domain

import (
	"context"
	"errors"
)

// ErrDuplicate 唯一约束冲突（由仓储层从驱动错误翻译而来）
var ErrDuplicate = errors.New("duplicate record")

// 查找类方法在记录不存在时返回 (nil, nil)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRoles(ctx context.Context, id string, roles RoleSet) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	// Delete 同一事务内把引用它的请求 category_id 置空
	Delete(ctx context.Context, id uint) (bool, error)
}

type ServiceRequestFilter struct {
	Status      *ServiceStatus
	RequesterID string
	Limit       int
}

type ServiceRequestRepository interface {
	Create(ctx context.Context, r *ServiceRequest) error
	FindByID(ctx context.Context, id uint) (*ServiceRequest, error)
	List(ctx context.Context, f ServiceRequestFilter) ([]ServiceRequest, error)
	SaveStatus(ctx context.Context, r *ServiceRequest) error
	// Delete 同一事务内级联删除报名、捐赠与评价
	Delete(ctx context.Context, id uint) (bool, error)
	UsedCategories(ctx context.Context) ([]Category, error)
	CountByStatus(ctx context.Context) (map[ServiceStatus]int64, error)
}

type VolunteerApplicationRepository interface {
	Create(ctx context.Context, a *VolunteerApplication) error
	FindByID(ctx context.Context, id uint) (*VolunteerApplication, error)
	Exists(ctx context.Context, requestID uint, volunteerID string) (bool, error)
	ListByRequest(ctx context.Context, requestID uint) ([]VolunteerApplication, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]VolunteerApplication, error)
	SaveStatus(ctx context.Context, a *VolunteerApplication) error
	CountByStatus(ctx context.Context) (map[ApplicationStatus]int64, error)
	TopVolunteers(ctx context.Context, limit int) ([]VolunteerRank, error)
}

type DonationRepository interface {
	Create(ctx context.Context, d *Donation) error
	ListByRequest(ctx context.Context, requestID uint) ([]Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]Donation, error)
	ListAll(ctx context.Context) ([]Donation, error)
	Totals(ctx context.Context) (DonationStats, error)
	TopDonors(ctx context.Context, limit int) ([]DonorRank, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	Exists(ctx context.Context, requestID uint, authorID string) (bool, error)
	ListByRequest(ctx context.Context, requestID uint) ([]Feedback, error)
	ListAll(ctx context.Context) ([]Feedback, error)
	Testimonials(ctx context.Context, minRating, limit int) ([]Feedback, error)
	RatingCounts(ctx context.Context) (map[int]int64, error)
}
