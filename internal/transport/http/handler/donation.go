package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type DonationHandler struct {
	svc *service.DonationService
}

func NewDonationHandler(svc *service.DonationService) *DonationHandler {
	return &DonationHandler{svc: svc}
}

func (h *DonationHandler) MountAPI(g ez.Groups) {
	pub := g.Public.Group("/donations")
	ez.RegisterAction(pub, ez.Action[struct{}, *domain.DonationStats]{
		Method: http.MethodGet,
		Path:   "/statistics",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) (*domain.DonationStats, error) {
			return h.svc.Statistics(c.Request.Context())
		},
	})
	ez.RegisterAction(pub, ez.Action[limitQ, []domain.DonorRank]{
		Method: http.MethodGet,
		Path:   "/top-donors",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *auth.Claims, in *limitQ) ([]domain.DonorRank, error) {
			rs, err := h.svc.TopDonors(c.Request.Context(), in.Limit)
			if rs == nil && err == nil {
				rs = []domain.DonorRank{}
			}
			return rs, err
		},
	})

	e := g.Authed.Group("/donations")
	ez.RegisterAction(e, ez.Action[service.DonateInput, donationView]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Roles:  []domain.Role{domain.RoleDonor},
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.DonateInput) (donationView, error) {
			d, err := h.svc.Donate(c.Request.Context(), caller, *in)
			if err != nil {
				return donationView{}, err
			}
			return toDonationView(d), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []donationView]{
		Method: http.MethodGet,
		Path:   "/by-request/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]donationView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			ds, err := h.svc.ByRequest(c.Request.Context(), caller, id)
			if err != nil {
				return nil, err
			}
			return mapAll(ds, toDonationView), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []donationView]{
		Method: http.MethodGet,
		Path:   "/my-donations",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]donationView, error) {
			ds, err := h.svc.Mine(c.Request.Context(), caller)
			if err != nil {
				return nil, err
			}
			return mapAll(ds, toDonationView), nil
		},
	})
	h.mountAdmin(e)
}

func (h *DonationHandler) MountAdmin(e ez.EZ) { h.mountAdmin(e.Group("/donations")) }

func (h *DonationHandler) mountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, []donationView]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]donationView, error) {
			ds, err := h.svc.All(c.Request.Context(), caller)
			if err != nil {
				return nil, err
			}
			return mapAll(ds, toDonationView), nil
		},
	})
}
