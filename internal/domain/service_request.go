package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"go-community-hub/internal/core/apperr"
)

type ServiceStatus string

const (
	StatusInProgress ServiceStatus = "InProgress"
	StatusCompleted  ServiceStatus = "Completed"
	StatusCancelled  ServiceStatus = "Cancelled"
)

// 顺序与旧客户端的数字枚举一致
var serviceStatuses = []ServiceStatus{StatusInProgress, StatusCompleted, StatusCancelled}

func ParseServiceStatus(s string) (ServiceStatus, bool) {
	if v, ok := parseOrdinal(s, serviceStatuses); ok {
		return v, true
	}
	return parseEnum(s, serviceStatuses)
}

func (s ServiceStatus) Valid() bool { return slices.Contains(serviceStatuses, s) }

// UnmarshalJSON 兼容字符串与数字两种写法；未知值原样保留，交给校验报错
func (s *ServiceStatus) UnmarshalJSON(b []byte) error {
	raw, err := enumToken(b)
	if err != nil {
		return err
	}
	if v, ok := ParseServiceStatus(raw); ok {
		*s = v
		return nil
	}
	*s = ServiceStatus(raw)
	return nil
}

type ServiceRequest struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Title        string        `gorm:"size:200;not null" json:"title"`
	Description  string        `gorm:"size:2000" json:"description"`
	RequesterID  string        `gorm:"size:36;not null;index" json:"requesterId"`
	Requester    *User         `gorm:"foreignKey:RequesterID" json:"-"`
	CategoryID   *uint         `gorm:"index" json:"categoryId"`
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"-"`
	Status       ServiceStatus `gorm:"size:16;not null;index" json:"status"`
	CancelReason *string       `gorm:"size:500" json:"cancelReason"`
	CreatedAt    time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (ServiceRequest) TableName() string { return "service_requests" }

const MaxCancelReasonLen = 500

// ApplyStatus 维持不变式：CancelReason 非空 ⇔ Status == Cancelled。
// 不限制状态迁移方向，任意状态之间均可直接切换。
func (r *ServiceRequest) ApplyStatus(status ServiceStatus, reason string) error {
	if !status.Valid() {
		return apperr.Invalid("status", "must be one of InProgress, Completed, Cancelled")
	}
	if status != StatusCancelled {
		r.Status = status
		r.CancelReason = nil
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.Invalid("cancelReason", "Cancel reason is required.")
	}
	if len(reason) > MaxCancelReasonLen {
		return apperr.Invalid("cancelReason", "must be at most 500 characters")
	}
	r.Status = status
	r.CancelReason = &reason
	return nil
}

func (r *ServiceRequest) OpenForContributions() bool { return r.Status == StatusInProgress }

func enumToken(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
