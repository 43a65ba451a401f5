package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-community-hub/internal/domain"
	"go-community-hub/internal/testutil"
)

func seedUser(t *testing.T, r *Repos, id, email string, roles ...domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: email, PasswordHash: "x", FullName: id, Roles: domain.NewRoleSet(append(roles, domain.RoleUser)...)}
	require.NoError(t, r.Users.Create(context.Background(), u))
	return u
}

func seedRequest(t *testing.T, r *Repos, requester string, status domain.ServiceStatus, createdAt time.Time) *domain.ServiceRequest {
	t.Helper()
	sr := &domain.ServiceRequest{Title: "help " + requester, RequesterID: requester, Status: status, CreatedAt: createdAt}
	require.NoError(t, r.Requests.Create(context.Background(), sr))
	return sr
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))

	u := seedUser(t, r, "u1", "a@example.com", domain.RoleDonor)

	dup := &domain.User{ID: "u2", Email: "a@example.com", PasswordHash: "x"}
	err := r.Users.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := r.Users.FindByEmail(ctx, " A@Example.com ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleSet{domain.RoleDonor, domain.RoleUser}, got.Roles)

	missing, err := r.Users.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, r.Users.UpdateRoles(ctx, u.ID, got.Roles.With(domain.RoleAdmin)))
	got, err = r.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Roles.Has(domain.RoleAdmin))

	seedUser(t, r, "u3", "c@example.com")
	byID, err := r.Users.FindByIDs(ctx, []string{"u1", "u3", "ghost"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	all, err := r.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategoryDeleteNullifiesRequests(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "u1", "a@example.com")

	c := &domain.Category{Name: "Groceries", Description: "food runs"}
	require.NoError(t, r.Categories.Create(ctx, c))
	sr := &domain.ServiceRequest{Title: "milk", RequesterID: "u1", Status: domain.StatusInProgress, CategoryID: &c.ID}
	require.NoError(t, r.Requests.Create(ctx, sr))

	used, err := r.Requests.UsedCategories(ctx)
	require.NoError(t, err)
	require.Len(t, used, 1)
	assert.Equal(t, "Groceries", used[0].Name)

	c.Name, c.Description = "Shopping", ""
	require.NoError(t, r.Categories.Update(ctx, c))
	got, err := r.Categories.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got.Name)
	assert.Empty(t, got.Description)

	ok, err := r.Categories.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := r.Categories.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, again)

	reloaded, err := r.Requests.FindByID(ctx, sr.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Nil(t, reloaded.CategoryID)
	assert.Nil(t, reloaded.Category)
}

func TestServiceRequestListAndStatus(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "u1", "a@example.com")
	seedUser(t, r, "u2", "b@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	old := seedRequest(t, r, "u1", domain.StatusInProgress, base)
	newer := seedRequest(t, r, "u2", domain.StatusInProgress, base.Add(time.Minute))
	seedRequest(t, r, "u1", domain.StatusCompleted, base.Add(2*time.Minute))

	all, err := r.Requests.List(ctx, domain.ServiceRequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.StatusCompleted, all[0].Status, "newest first")
	require.NotNil(t, all[0].Requester)
	assert.Equal(t, "u1", all[0].Requester.ID)

	st := domain.StatusInProgress
	open, err := r.Requests.List(ctx, domain.ServiceRequestFilter{Status: &st, Limit: 1})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, newer.ID, open[0].ID)

	mine, err := r.Requests.List(ctx, domain.ServiceRequestFilter{RequesterID: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, old.ApplyStatus(domain.StatusCancelled, "no longer needed"))
	require.NoError(t, r.Requests.SaveStatus(ctx, old))
	got, err := r.Requests.FindByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelReason)

	require.NoError(t, got.ApplyStatus(domain.StatusInProgress, ""))
	require.NoError(t, r.Requests.SaveStatus(ctx, got))
	got, err = r.Requests.FindByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CancelReason)

	counts, err := r.Requests.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusInProgress])
	assert.Equal(t, int64(1), counts[domain.StatusCompleted])
	assert.Zero(t, counts[domain.StatusCancelled])
}

func TestServiceRequestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "owner", "o@example.com")
	seedUser(t, r, "vol", "v@example.com", domain.RoleVolunteer)
	sr := seedRequest(t, r, "owner", domain.StatusInProgress, time.Now().UTC())
	keep := seedRequest(t, r, "owner", domain.StatusInProgress, time.Now().UTC())

	now := time.Now().UTC()
	require.NoError(t, r.Applications.Create(ctx, &domain.VolunteerApplication{ServiceRequestID: sr.ID, VolunteerID: "vol", Status: domain.ApplicationPending, AppliedAt: now}))
	require.NoError(t, r.Applications.Create(ctx, &domain.VolunteerApplication{ServiceRequestID: keep.ID, VolunteerID: "vol", Status: domain.ApplicationPending, AppliedAt: now}))
	require.NoError(t, r.Donations.Create(ctx, &domain.Donation{ServiceRequestID: sr.ID, DonorID: "vol", Amount: 10, DonatedAt: now}))
	require.NoError(t, r.Feedback.Create(ctx, &domain.Feedback{ServiceRequestID: sr.ID, AuthorID: "vol", Rating: 5, CreatedAt: now}))

	ok, err := r.Requests.Delete(ctx, sr.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	gone, err := r.Requests.FindByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	apps, err := r.Applications.ListByVolunteer(ctx, "vol")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, keep.ID, apps[0].ServiceRequestID)

	ds, err := r.Donations.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds)

	fs, err := r.Feedback.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, fs)

	ok, err = r.Requests.Delete(ctx, sr.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVolunteerApplicationRepo(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "owner", "o@example.com")
	seedUser(t, r, "v1", "v1@example.com", domain.RoleVolunteer)
	seedUser(t, r, "v2", "v2@example.com", domain.RoleVolunteer)
	sr1 := seedRequest(t, r, "owner", domain.StatusInProgress, time.Now().UTC())
	sr2 := seedRequest(t, r, "owner", domain.StatusInProgress, time.Now().UTC())

	apply := func(req uint, vol string, st domain.ApplicationStatus) *domain.VolunteerApplication {
		a := &domain.VolunteerApplication{ServiceRequestID: req, VolunteerID: vol, Status: st, AppliedAt: time.Now().UTC()}
		require.NoError(t, r.Applications.Create(ctx, a))
		return a
	}
	a1 := apply(sr1.ID, "v1", domain.ApplicationPending)
	apply(sr2.ID, "v1", domain.ApplicationAccepted)
	apply(sr1.ID, "v2", domain.ApplicationAccepted)

	err := r.Applications.Create(ctx, &domain.VolunteerApplication{ServiceRequestID: sr1.ID, VolunteerID: "v1", Status: domain.ApplicationPending, AppliedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	exists, err := r.Applications.Exists(ctx, sr1.ID, "v1")
	require.NoError(t, err)
	assert.True(t, exists)

	a1.Status = domain.ApplicationAccepted
	require.NoError(t, r.Applications.SaveStatus(ctx, a1))
	got, err := r.Applications.FindByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, got.Status)
	require.NotNil(t, got.ServiceRequest)
	assert.Equal(t, "owner", got.ServiceRequest.RequesterID)

	byReq, err := r.Applications.ListByRequest(ctx, sr1.ID)
	require.NoError(t, err)
	require.Len(t, byReq, 2)
	assert.NotNil(t, byReq[0].Volunteer)

	counts, err := r.Applications.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[domain.ApplicationAccepted])

	top, err := r.Applications.TopVolunteers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "v1", top[0].VolunteerID)
	assert.Equal(t, int64(2), top[0].CompletedServices)
	assert.Equal(t, int64(1), top[1].CompletedServices)

	top, err = r.Applications.TopVolunteers(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestDonationRepoAggregates(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "owner", "o@example.com")
	seedUser(t, r, "d1", "d1@example.com", domain.RoleDonor)
	seedUser(t, r, "d2", "d2@example.com", domain.RoleDonor)
	sr := seedRequest(t, r, "owner", domain.StatusInProgress, time.Now().UTC())

	empty, err := r.Donations.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStats{}, empty)

	for _, d := range []struct {
		donor  string
		amount float64
	}{{"d1", 50}, {"d1", 25}, {"d2", 100}} {
		require.NoError(t, r.Donations.Create(ctx, &domain.Donation{ServiceRequestID: sr.ID, DonorID: d.donor, Amount: d.amount, DonatedAt: time.Now().UTC()}))
	}

	st, err := r.Donations.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalDonations)
	assert.InDelta(t, 175, st.TotalAmount, 0.001)
	assert.InDelta(t, 175.0/3, st.AverageDonation, 0.001)
	assert.Equal(t, int64(2), st.UniqueDonors)

	top, err := r.Donations.TopDonors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "d2", top[0].DonorID)
	assert.InDelta(t, 100, top[0].TotalAmount, 0.001)
	assert.Equal(t, int64(2), top[1].DonationCount)

	mine, err := r.Donations.ListByDonor(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.NotNil(t, mine[0].ServiceRequest)

	byReq, err := r.Donations.ListByRequest(ctx, sr.ID)
	require.NoError(t, err)
	require.Len(t, byReq, 3)
	assert.NotNil(t, byReq[0].Donor)
}

func TestFeedbackRepo(t *testing.T) {
	ctx := context.Background()
	r := New(testutil.NewDB(t))
	seedUser(t, r, "owner", "o@example.com")
	seedUser(t, r, "a1", "a1@example.com")
	seedUser(t, r, "a2", "a2@example.com")
	sr := seedRequest(t, r, "owner", domain.StatusCompleted, time.Now().UTC())

	base := time.Now().UTC()
	require.NoError(t, r.Feedback.Create(ctx, &domain.Feedback{ServiceRequestID: sr.ID, AuthorID: "a1", Rating: 5, Comment: "great", CreatedAt: base}))
	require.NoError(t, r.Feedback.Create(ctx, &domain.Feedback{ServiceRequestID: sr.ID, AuthorID: "a2", Rating: 2, Comment: "meh", CreatedAt: base.Add(time.Second)}))

	err := r.Feedback.Create(ctx, &domain.Feedback{ServiceRequestID: sr.ID, AuthorID: "a1", Rating: 4, CreatedAt: base})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	exists, err := r.Feedback.Exists(ctx, sr.ID, "a2")
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := r.Feedback.ListByRequest(ctx, sr.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].AuthorID, "newest first")

	best, err := r.Feedback.Testimonials(ctx, domain.TestimonialRating, 6)
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, "great", best[0].Comment)
	require.NotNil(t, best[0].Author)
	require.NotNil(t, best[0].ServiceRequest)

	counts, err := r.Feedback.RatingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{5: 1, 2: 1}, counts)
}

func TestUsedCategoriesHonoursContext(t *testing.T) {
	r := New(testutil.NewDB(t))
	seedUser(t, r, "u1", "a@example.com")
	c := &domain.Category{Name: "Transport"}
	require.NoError(t, r.Categories.Create(context.Background(), c))
	sr := &domain.ServiceRequest{Title: "clinic ride", RequesterID: "u1", Status: domain.StatusInProgress, CategoryID: &c.ID}
	require.NoError(t, r.Requests.Create(context.Background(), sr))

	used, err := r.Requests.UsedCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, used, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Requests.UsedCategories(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
