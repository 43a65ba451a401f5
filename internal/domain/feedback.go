package domain

import "time"

const (
	MinRating         = 1
	MaxRating         = 5
	MaxCommentLen     = 1000
	TestimonialRating = 4
)

type Feedback struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ServiceRequestID uint            `gorm:"not null;uniqueIndex:idx_feedback_request_author" json:"serviceRequestId"`
	ServiceRequest   *ServiceRequest `gorm:"foreignKey:ServiceRequestID" json:"-"`
	AuthorID         string          `gorm:"size:36;not null;uniqueIndex:idx_feedback_request_author" json:"authorId"`
	Author           *User           `gorm:"foreignKey:AuthorID" json:"-"`
	Rating           int             `gorm:"not null" json:"rating"`
	Comment          string          `gorm:"size:1000" json:"comment"`
	CreatedAt        time.Time       `gorm:"index" json:"createdAt"`
}

func (Feedback) TableName() string { return "feedback" }
