package handler

import (
	"time"

	"go-community-hub/internal/domain"
)

// 对外视图：关联用户只暴露 UserRef，不含证件号与手机号

type categoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type requestRef struct {
	ID     uint                 `json:"id"`
	Title  string               `json:"title"`
	Status domain.ServiceStatus `json:"status"`
}

type requestView struct {
	ID           uint                 `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       domain.ServiceStatus `json:"status"`
	CancelReason *string              `json:"cancelReason"`
	CategoryID   *uint                `json:"categoryId"`
	Category     *categoryRef         `json:"category"`
	RequesterID  string               `json:"requesterId"`
	Requester    *domain.UserRef      `json:"requester"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type applicationView struct {
	ID               uint                     `json:"id"`
	ServiceRequestID uint                     `json:"serviceRequestId"`
	ServiceRequest   *requestRef              `json:"serviceRequest"`
	VolunteerID      string                   `json:"volunteerId"`
	Volunteer        *domain.UserRef          `json:"volunteer"`
	Status           domain.ApplicationStatus `json:"status"`
	AppliedAt        time.Time                `json:"appliedAt"`
}

type donationView struct {
	ID               uint            `json:"id"`
	ServiceRequestID uint            `json:"serviceRequestId"`
	ServiceRequest   *requestRef     `json:"serviceRequest"`
	DonorID          string          `json:"donorId"`
	Donor            *domain.UserRef `json:"donor"`
	Amount           float64         `json:"amount"`
	DonatedAt        time.Time       `json:"donatedAt"`
}

type feedbackView struct {
	ID               uint            `json:"id"`
	ServiceRequestID uint            `json:"serviceRequestId"`
	ServiceRequest   *requestRef     `json:"serviceRequest"`
	AuthorID         string          `json:"authorId"`
	Author           *domain.UserRef `json:"author"`
	Rating           int             `json:"rating"`
	Comment          string          `json:"comment"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type testimonialView struct {
	ID                  uint      `json:"id"`
	AuthorName          string    `json:"authorName"`
	AuthorRole          string    `json:"authorRole"`
	Content             string    `json:"content"`
	Rating              int       `json:"rating"`
	ServiceRequestTitle string    `json:"serviceRequestTitle"`
	Date                time.Time `json:"date"`
}

// userView 管理端与本人可见的完整资料
type userView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	NationalID  string    `json:"nationalId"`
	City        string    `json:"city"`
	PhoneNumber string    `json:"phoneNumber"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"createdAt"`
}

// mapAll 空输入返回 []，保证 JSON 为数组而非 null
func mapAll[T any, V any](in []T, f func(*T) V) []V {
	out := make([]V, 0, len(in))
	for i := range in {
		out = append(out, f(&in[i]))
	}
	return out
}

func toRequestRef(r *domain.ServiceRequest) *requestRef {
	if r == nil {
		return nil
	}
	return &requestRef{ID: r.ID, Title: r.Title, Status: r.Status}
}

func toRequestView(r *domain.ServiceRequest) requestView {
	v := requestView{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		CancelReason: r.CancelReason,
		CategoryID:   r.CategoryID,
		RequesterID:  r.RequesterID,
		Requester:    r.Requester.Ref(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Category != nil {
		v.Category = &categoryRef{ID: r.Category.ID, Name: r.Category.Name}
	}
	return v
}

func toApplicationView(a *domain.VolunteerApplication) applicationView {
	return applicationView{
		ID:               a.ID,
		ServiceRequestID: a.ServiceRequestID,
		ServiceRequest:   toRequestRef(a.ServiceRequest),
		VolunteerID:      a.VolunteerID,
		Volunteer:        a.Volunteer.Ref(),
		Status:           a.Status,
		AppliedAt:        a.AppliedAt,
	}
}

func toDonationView(d *domain.Donation) donationView {
	return donationView{
		ID:               d.ID,
		ServiceRequestID: d.ServiceRequestID,
		ServiceRequest:   toRequestRef(d.ServiceRequest),
		DonorID:          d.DonorID,
		Donor:            d.Donor.Ref(),
		Amount:           d.Amount,
		DonatedAt:        d.DonatedAt,
	}
}

func toFeedbackView(f *domain.Feedback) feedbackView {
	return feedbackView{
		ID:               f.ID,
		ServiceRequestID: f.ServiceRequestID,
		ServiceRequest:   toRequestRef(f.ServiceRequest),
		AuthorID:         f.AuthorID,
		Author:           f.Author.Ref(),
		Rating:           f.Rating,
		Comment:          f.Comment,
		CreatedAt:        f.CreatedAt,
	}
}

func toTestimonialView(f *domain.Feedback) testimonialView {
	v := testimonialView{ID: f.ID, Content: f.Comment, Rating: f.Rating, Date: f.CreatedAt}
	if f.Author != nil {
		v.AuthorName = f.Author.FullName
		v.AuthorRole = primaryRole(f.Author.Roles)
	}
	if f.ServiceRequest != nil {
		v.ServiceRequestTitle = f.ServiceRequest.Title
	}
	return v
}

// primaryRole 优先展示 User 以外的角色
func primaryRole(rs domain.RoleSet) string {
	for _, r := range rs {
		if r != domain.RoleUser {
			return string(r)
		}
	}
	if len(rs) > 0 {
		return string(rs[0])
	}
	return ""
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		NationalID:  u.NationalID,
		City:        u.City,
		PhoneNumber: u.PhoneNumber,
		Roles:       u.Roles.Strings(),
		CreatedAt:   u.CreatedAt,
	}
}
