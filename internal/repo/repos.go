package repo

import "gorm.io/gorm"

// Repos 一次性装配全部仓储
type Repos struct {
	Users        *UserRepo
	Categories   *CategoryRepo
	Requests     *ServiceRequestRepo
	Applications *VolunteerApplicationRepo
	Donations    *DonationRepo
	Feedback     *FeedbackRepo
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		Users:        NewUserRepo(db),
		Categories:   NewCategoryRepo(db),
		Requests:     NewServiceRequestRepo(db),
		Applications: NewVolunteerApplicationRepo(db),
		Donations:    NewDonationRepo(db),
		Feedback:     NewFeedbackRepo(db),
	}
}
