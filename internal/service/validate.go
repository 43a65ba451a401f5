package service

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/domain"
)

const defaultMinPasswordLength = 8

// 注册时可自选的角色；serviceSeeker 只拿到默认的 User
var registerRoles = map[string]domain.Role{
	"serviceseeker": domain.RoleUser,
	"volunteer":     domain.RoleVolunteer,
	"donor":         domain.RoleDonor,
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	NationalID  string `json:"nationalId"`
	City        string `json:"city"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

func (in RegisterInput) Validate(minPassword int) error {
	if minPassword <= 0 {
		minPassword = defaultMinPasswordLength
	}
	fs := apperr.Fields{}
	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		fs.Add("email", "Email is required.")
	case !validEmail(email):
		fs.Add("email", "Email is not a valid address.")
	}
	if msg := passwordProblem(in.Password, minPassword); msg != "" {
		fs.Add("password", msg)
	}
	minLen(fs, "fullName", "Full name", in.FullName, 3)
	minLen(fs, "nationalId", "National ID", in.NationalID, 5)
	minLen(fs, "city", "City", in.City, 2)
	minLen(fs, "phoneNumber", "Phone number", in.PhoneNumber, 5)
	if in.Role != "" {
		if _, ok := registerRoles[strings.ToLower(strings.TrimSpace(in.Role))]; !ok {
			fs.Add("role", "Role must be one of serviceSeeker, volunteer, donor.")
		}
	}
	return fs.Err()
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && strings.Contains(s[strings.LastIndexByte(s, '@'):], ".")
}

func passwordProblem(pw string, min int) string {
	if utf8.RuneCountInString(pw) < min {
		return fmt.Sprintf("Password must be at least %d characters.", min)
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "Password must contain an uppercase letter, a lowercase letter and a digit."
	}
	return ""
}

func minLen(fs apperr.Fields, field, label, v string, n int) {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
		fs.Add(field, fmt.Sprintf("%s must be at least %d characters.", label, n))
	}
}

func maxLen(fs apperr.Fields, field, label, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		fs.Add(field, fmt.Sprintf("%s must be at most %d characters.", label, n))
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	fs := apperr.Fields{}
	if strings.TrimSpace(in.Email) == "" {
		fs.Add("email", "Email is required.")
	}
	if in.Password == "" {
		fs.Add("password", "Password is required.")
	}
	return fs.Err()
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	fs := apperr.Fields{}
	if in.Name == "" {
		fs.Add("name", "Name is required.")
	}
	maxLen(fs, "name", "Name", in.Name, 100)
	maxLen(fs, "description", "Description", in.Description, 500)
	return fs.Err()
}

type CreateRequestInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"categoryId"`
}

func (in *CreateRequestInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	fs := apperr.Fields{}
	if in.Title == "" {
		fs.Add("title", "Title is required.")
	}
	maxLen(fs, "title", "Title", in.Title, 200)
	maxLen(fs, "description", "Description", in.Description, 2000)
	if in.CategoryID != nil && *in.CategoryID == 0 {
		in.CategoryID = nil
	}
	return fs.Err()
}

type StatusInput struct {
	Status       domain.ServiceStatus `json:"status"`
	CancelReason string               `json:"cancelReason"`
}

type ApplyInput struct {
	ServiceRequestID uint `json:"serviceRequestId"`
}

type ApplicationStatusInput struct {
	Status domain.ApplicationStatus `json:"status"`
}

type DonateInput struct {
	ServiceRequestID uint    `json:"serviceRequestId"`
	Amount           float64 `json:"amount"`
}

func (in DonateInput) Validate() error {
	fs := apperr.Fields{}
	if in.ServiceRequestID == 0 {
		fs.Add("serviceRequestId", "Service request is required.")
	}
	switch {
	case math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0:
		fs.Add("amount", "Donation amount must be positive.")
	case in.Amount > domain.MaxDonationAmount:
		fs.Add("amount", "Donation amount must not exceed 1000000000.")
	}
	return fs.Err()
}

type FeedbackInput struct {
	ServiceRequestID uint   `json:"serviceRequestId"`
	Rating           int    `json:"rating"`
	Comment          string `json:"comment"`
}

func (in *FeedbackInput) Validate() error {
	in.Comment = strings.TrimSpace(in.Comment)
	fs := apperr.Fields{}
	if in.ServiceRequestID == 0 {
		fs.Add("serviceRequestId", "Service request is required.")
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		fs.Add("rating", fmt.Sprintf("Rating must be between %d and %d.", domain.MinRating, domain.MaxRating))
	}
	maxLen(fs, "comment", "Comment", in.Comment, domain.MaxCommentLen)
	return fs.Err()
}
