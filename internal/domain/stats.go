package domain

type ServiceRequestStats struct {
	TotalRequests      int64   `json:"totalRequests"`
	CompletedRequests  int64   `json:"completedRequests"`
	InProgressRequests int64   `json:"inProgressRequests"`
	CancelledRequests  int64   `json:"cancelledRequests"`
	CompletionRate     float64 `json:"completionRate"`
}

type ApplicationStats struct {
	TotalApplications    int64   `json:"totalApplications"`
	AcceptedApplications int64   `json:"acceptedApplications"`
	PendingApplications  int64   `json:"pendingApplications"`
	RejectedApplications int64   `json:"rejectedApplications"`
	AcceptanceRate       float64 `json:"acceptanceRate"`
}

type DonationStats struct {
	TotalDonations  int64   `json:"totalDonations"`
	TotalAmount     float64 `json:"totalAmount"`
	AverageDonation float64 `json:"averageDonation"`
	UniqueDonors    int64   `json:"uniqueDonors"`
}

type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type FeedbackStats struct {
	TotalFeedback      int64          `json:"totalFeedback"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution []RatingBucket `json:"ratingDistribution"`
}

type VolunteerRank struct {
	VolunteerID       string   `json:"volunteerId"`
	CompletedServices int64    `json:"completedServices"`
	Volunteer         *UserRef `json:"volunteer" gorm:"-"`
}

type DonorRank struct {
	DonorID       string   `json:"donorId"`
	TotalAmount   float64  `json:"totalAmount"`
	DonationCount int64    `json:"donationCount"`
	Donor         *UserRef `json:"donor" gorm:"-"`
}

// Percent 总数为 0 时返回 0
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
