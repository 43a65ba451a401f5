package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/domain"
)

func TestDonationScenario(t *testing.T) {
	f := newFixture(t)
	_, donor := f.register("a@example.com", "donor")
	_, owner := f.register("b@example.com", "serviceSeeker")

	sr := f.request(owner, "Grocery help")
	assert.Equal(t, domain.StatusInProgress, sr.Status)
	assert.Nil(t, sr.CancelReason)

	d, err := f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, 50.0, d.Amount)

	st, err := f.svc.Donations.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalDonations)
	assert.InDelta(t, 50, st.TotalAmount, 0.001)

	_, err = f.svc.Requests.UpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: domain.StatusCancelled})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := f.svc.Requests.UpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: domain.StatusCancelled, CancelReason: "no longer needed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	require.NotNil(t, updated.CancelReason)
	assert.Equal(t, "no longer needed", *updated.CancelReason)

	_, err = f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: 10})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
	assert.EqualError(t, err, msgNotOpenToDonate)

	all, err := f.svc.Donations.All(f.ctx, f.admin())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDonateRejectsNonPositiveAmounts(t *testing.T) {
	f := newFixture(t)
	_, donor := f.register("a@example.com", "donor")
	_, owner := f.register("b@example.com", "")
	sr := f.request(owner, "Rent")

	for _, amount := range []float64{0, -5, 0.001} {
		_, err := f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: amount})
		require.Error(t, err, "amount %v", amount)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	}
	ds, err := f.repos.Donations.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, ds)

	_, err = f.svc.Donations.Donate(f.ctx, owner, DonateInput{ServiceRequestID: sr.ID, Amount: 5})
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "only donors may donate")

	_, err = f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: 9999, Amount: 5})
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
}

func TestDonateRejectsOversizedAmounts(t *testing.T) {
	f := newFixture(t)
	_, donor := f.register("a@example.com", "donor")
	_, owner := f.register("b@example.com", "")
	sr := f.request(owner, "Roof repair")

	for _, amount := range []float64{domain.MaxDonationAmount + 0.01, 1e16, 1.7e308} {
		_, err := f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: amount})
		require.Error(t, err, "amount %v", amount)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "amount")
	}

	_, err := f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: domain.MaxDonationAmount})
	require.NoError(t, err)
	_, err = f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: domain.MaxDonationAmount})
	require.NoError(t, err)

	st, err := f.svc.Donations.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalDonations)
	assert.InDelta(t, 2*domain.MaxDonationAmount, st.TotalAmount, 0.01)
	assert.InDelta(t, domain.MaxDonationAmount, st.AverageDonation, 0.01)
}

func TestVolunteerScenario(t *testing.T) {
	f := newFixture(t)
	vol, v := f.register("v@example.com", "volunteer")
	_, owner := f.register("o@example.com", "")
	sr := f.request(owner, "Paint fence")

	a, err := f.svc.Applications.Apply(f.ctx, v, ApplyInput{ServiceRequestID: sr.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, a.Status)

	_, err = f.svc.Applications.Apply(f.ctx, v, ApplyInput{ServiceRequestID: sr.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
	assert.EqualError(t, err, msgAlreadyApplied)

	apps, err := f.svc.Applications.ByRequest(f.ctx, owner, sr.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	accepted, err := f.svc.Applications.UpdateStatus(f.ctx, owner, a.ID, ApplicationStatusInput{Status: domain.ApplicationAccepted})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, accepted.Status)

	top, err := f.svc.Applications.TopVolunteers(f.ctx, v, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, vol.ID, top[0].VolunteerID)
	assert.Equal(t, int64(1), top[0].CompletedServices)
	require.NotNil(t, top[0].Volunteer)
	assert.Equal(t, vol.FullName, top[0].Volunteer.FullName)

	st, err := f.svc.Applications.Statistics(f.ctx, v)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalApplications)
	assert.InDelta(t, 100, st.AcceptanceRate, 0.001)

	mine, err := f.svc.Applications.Mine(f.ctx, v)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApplyRequiresOpenRequestAndVolunteerRole(t *testing.T) {
	f := newFixture(t)
	_, v := f.register("v@example.com", "volunteer")
	_, owner := f.register("o@example.com", "")
	sr := f.request(owner, "Move boxes")

	_, err := f.svc.Applications.Apply(f.ctx, owner, ApplyInput{ServiceRequestID: sr.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Applications.Apply(f.ctx, nil, ApplyInput{ServiceRequestID: sr.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.Requests.UpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: domain.StatusCompleted})
	require.NoError(t, err)

	_, err = f.svc.Applications.Apply(f.ctx, v, ApplyInput{ServiceRequestID: sr.ID})
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
	assert.EqualError(t, err, msgNotOpenToApply)
}

func TestOwnershipChecks(t *testing.T) {
	f := newFixture(t)
	_, owner := f.register("o@example.com", "")
	_, stranger := f.register("s@example.com", "volunteer")
	admin := f.admin()
	sr := f.request(owner, "Walk the dog")

	_, err := f.svc.Requests.UpdateStatus(f.ctx, stranger, sr.ID, StatusInput{Status: domain.StatusCompleted})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Requests.UpdateStatus(f.ctx, owner, 9999, StatusInput{Status: domain.StatusCompleted})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Requests.UpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: "Archived"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := f.svc.Requests.UpdateStatus(f.ctx, admin, sr.ID, StatusInput{Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	// 不限制流转方向
	got, err = f.svc.Requests.UpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)

	_, err = f.svc.Requests.AdminUpdateStatus(f.ctx, owner, sr.ID, StatusInput{Status: domain.StatusCompleted})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Applications.ByRequest(f.ctx, stranger, sr.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Donations.ByRequest(f.ctx, stranger, sr.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Donations.ByRequest(f.ctx, admin, sr.ID)
	assert.NoError(t, err)

	a, err := f.svc.Applications.Apply(f.ctx, stranger, ApplyInput{ServiceRequestID: sr.ID})
	require.NoError(t, err)
	_, err = f.svc.Applications.UpdateStatus(f.ctx, stranger, a.ID, ApplicationStatusInput{Status: domain.ApplicationAccepted})
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "volunteer cannot accept their own application")
}

func TestCancelReasonInvariant(t *testing.T) {
	f := newFixture(t)
	_, owner := f.register("o@example.com", "")
	admin := f.admin()
	sr := f.request(owner, "Fix roof")

	steps := []StatusInput{
		{Status: domain.StatusCancelled, CancelReason: "duplicate"},
		{Status: domain.StatusCompleted, CancelReason: "ignored"},
		{Status: domain.StatusCancelled, CancelReason: "  spam  "},
		{Status: domain.StatusInProgress},
	}
	for _, in := range steps {
		got, err := f.svc.Requests.AdminUpdateStatus(f.ctx, admin, sr.ID, in)
		require.NoError(t, err)
		stored, err := f.svc.Requests.Get(f.ctx, sr.ID)
		require.NoError(t, err)
		for _, r := range []*domain.ServiceRequest{got, stored} {
			assert.Equal(t, r.Status == domain.StatusCancelled, r.CancelReason != nil, "status %s", r.Status)
		}
	}
}

func TestServiceRequestQueries(t *testing.T) {
	f := newFixture(t)
	_, owner := f.register("o@example.com", "")
	_, other := f.register("x@example.com", "")
	admin := f.admin()

	cat, err := f.svc.Categories.Create(f.ctx, admin, CategoryInput{Name: " Errands ", Description: "small jobs"})
	require.NoError(t, err)
	assert.Equal(t, "Errands", cat.Name)

	for i := 0; i < 8; i++ {
		f.request(owner, "job")
	}
	withCat, err := f.svc.Requests.Create(f.ctx, other, CreateRequestInput{Title: "Post office run", CategoryID: &cat.ID})
	require.NoError(t, err)
	require.NotNil(t, withCat.Category)
	require.NotNil(t, withCat.Requester)

	bad := uint(4242)
	_, err = f.svc.Requests.Create(f.ctx, other, CreateRequestInput{Title: "x", CategoryID: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Requests.Create(f.ctx, other, CreateRequestInput{Title: "   "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Requests.Create(f.ctx, nil, CreateRequestInput{Title: "anon"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	featured, err := f.svc.Requests.Featured(f.ctx)
	require.NoError(t, err)
	assert.Len(t, featured, featuredLimit)
	assert.Equal(t, withCat.ID, featured[0].ID)

	mine, err := f.svc.Requests.Mine(f.ctx, other)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.Requests.Get(f.ctx, 9999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Requests.UpdateStatus(f.ctx, other, withCat.ID, StatusInput{Status: domain.StatusCompleted})
	require.NoError(t, err)
	done, err := f.svc.Requests.List(f.ctx, "completed")
	require.NoError(t, err)
	assert.Len(t, done, 1)
	_, err = f.svc.Requests.List(f.ctx, "bogus")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	used, err := f.svc.Requests.UsedCategories(f.ctx)
	require.NoError(t, err)
	require.Len(t, used, 1)

	st, err := f.svc.Requests.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), st.TotalRequests)
	assert.Equal(t, int64(1), st.CompletedRequests)
	assert.InDelta(t, 100.0/9, st.CompletionRate, 0.001)

	again, err := f.svc.Requests.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, st, again)
}

func TestDeleteServiceRequestCascades(t *testing.T) {
	f := newFixture(t)
	_, owner := f.register("o@example.com", "")
	_, donor := f.register("d@example.com", "donor")
	admin := f.admin()
	sr := f.request(owner, "Tutor")

	_, err := f.svc.Donations.Donate(f.ctx, donor, DonateInput{ServiceRequestID: sr.ID, Amount: 20})
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.svc.Requests.Delete(f.ctx, owner, sr.ID), apperr.KindForbidden))
	require.NoError(t, f.svc.Requests.Delete(f.ctx, admin, sr.ID))
	assert.True(t, apperr.Is(f.svc.Requests.Delete(f.ctx, admin, sr.ID), apperr.KindNotFound))

	st, err := f.svc.Donations.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, st.TotalDonations)
}

func TestStatisticsEmpty(t *testing.T) {
	f := newFixture(t)
	_, c := f.register("u@example.com", "")

	rs, err := f.svc.Requests.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceRequestStats{}, *rs)

	as, err := f.svc.Applications.Statistics(f.ctx, c)
	require.NoError(t, err)
	assert.Zero(t, as.AcceptanceRate)

	ds, err := f.svc.Donations.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, ds.AverageDonation)

	fs, err := f.svc.Feedback.Statistics(f.ctx, c)
	require.NoError(t, err)
	assert.Zero(t, fs.AverageRating)
	assert.Empty(t, fs.RatingDistribution)
}

func TestTopDonors(t *testing.T) {
	f := newFixture(t)
	_, owner := f.register("o@example.com", "")
	d1u, d1 := f.register("d1@example.com", "donor")
	_, d2 := f.register("d2@example.com", "donor")
	sr := f.request(owner, "Clinic")

	_, err := f.svc.Donations.Donate(f.ctx, d1, DonateInput{ServiceRequestID: sr.ID, Amount: 30})
	require.NoError(t, err)
	_, err = f.svc.Donations.Donate(f.ctx, d1, DonateInput{ServiceRequestID: sr.ID, Amount: 30})
	require.NoError(t, err)
	_, err = f.svc.Donations.Donate(f.ctx, d2, DonateInput{ServiceRequestID: sr.ID, Amount: 45.5})
	require.NoError(t, err)

	top, err := f.svc.Donations.TopDonors(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, d1u.ID, top[0].DonorID)
	assert.InDelta(t, 60, top[0].TotalAmount, 0.001)
	assert.Equal(t, int64(2), top[0].DonationCount)
	require.NotNil(t, top[0].Donor)
	assert.Equal(t, d1u.FullName, top[0].Donor.FullName)

	mine, err := f.svc.Donations.Mine(f.ctx, d2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.InDelta(t, 45.5, mine[0].Amount, 0.001)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0, 10))
	assert.Equal(t, 10, clampLimit(-3, 10))
	assert.Equal(t, 7, clampLimit(7, 10))
	assert.Equal(t, maxTopLimit, clampLimit(1000, 10))
}
