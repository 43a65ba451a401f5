package domain

import (
	"slices"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

var applicationStatuses = []ApplicationStatus{ApplicationPending, ApplicationAccepted, ApplicationRejected}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	if v, ok := parseOrdinal(s, applicationStatuses); ok {
		return v, true
	}
	return parseEnum(s, applicationStatuses)
}

func (s ApplicationStatus) Valid() bool { return slices.Contains(applicationStatuses, s) }

func (s *ApplicationStatus) UnmarshalJSON(b []byte) error {
	raw, err := enumToken(b)
	if err != nil {
		return err
	}
	if v, ok := ParseApplicationStatus(raw); ok {
		*s = v
		return nil
	}
	*s = ApplicationStatus(raw)
	return nil
}

// VolunteerApplication 同一志愿者对同一请求至多一条（唯一索引兜底）
type VolunteerApplication struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	ServiceRequestID uint              `gorm:"not null;uniqueIndex:idx_application_request_volunteer" json:"serviceRequestId"`
	ServiceRequest   *ServiceRequest   `gorm:"foreignKey:ServiceRequestID" json:"-"`
	VolunteerID      string            `gorm:"size:36;not null;uniqueIndex:idx_application_request_volunteer;index" json:"volunteerId"`
	Volunteer        *User             `gorm:"foreignKey:VolunteerID" json:"-"`
	Status           ApplicationStatus `gorm:"size:16;not null;index" json:"status"`
	AppliedAt        time.Time         `gorm:"not null" json:"appliedAt"`
}

func (VolunteerApplication) TableName() string { return "volunteer_applications" }
