package domain

import "time"

// MaxDonationAmount 单笔上限，远小于 decimal(18,2) 可表示的范围，累加不会溢出
const MaxDonationAmount = 1_000_000_000.00

type Donation struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ServiceRequestID uint            `gorm:"not null;index" json:"serviceRequestId"`
	ServiceRequest   *ServiceRequest `gorm:"foreignKey:ServiceRequestID" json:"-"`
	DonorID          string          `gorm:"size:36;not null;index" json:"donorId"`
	Donor            *User           `gorm:"foreignKey:DonorID" json:"-"`
	Amount           float64         `gorm:"type:decimal(18,2);not null" json:"amount"`
	DonatedAt        time.Time       `gorm:"not null" json:"donatedAt"`
}

func (Donation) TableName() string { return "donations" }
