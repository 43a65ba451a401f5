package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type VolunteerHandler struct {
	svc *service.VolunteerService
}

func NewVolunteerHandler(svc *service.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{svc: svc}
}

type limitQ struct {
	Limit int `form:"limit"`
}

func (h *VolunteerHandler) MountAPI(g ez.Groups) {
	e := g.Authed.Group("/volunteerapplications")
	volunteer := []domain.Role{domain.RoleVolunteer}

	ez.RegisterAction(e, ez.Action[service.ApplyInput, applicationView]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Roles:  volunteer,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.ApplyInput) (applicationView, error) {
			a, err := h.svc.Apply(c.Request.Context(), caller, *in)
			if err != nil {
				return applicationView{}, err
			}
			return toApplicationView(a), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []applicationView]{
		Method: http.MethodGet,
		Path:   "/by-request/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]applicationView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			as, err := h.svc.ByRequest(c.Request.Context(), caller, id)
			if err != nil {
				return nil, err
			}
			return mapAll(as, toApplicationView), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []applicationView]{
		Method: http.MethodGet,
		Path:   "/my-applications",
		Binder: ez.BindNone,
		Roles:  volunteer,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]applicationView, error) {
			as, err := h.svc.Mine(c.Request.Context(), caller)
			if err != nil {
				return nil, err
			}
			return mapAll(as, toApplicationView), nil
		},
	})
	ez.RegisterAction(e, ez.Action[service.ApplicationStatusInput, applicationView]{
		Method: http.MethodPut,
		Path:   "/:id/status",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.ApplicationStatusInput) (applicationView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return applicationView{}, err
			}
			a, err := h.svc.UpdateStatus(c.Request.Context(), caller, id, *in)
			if err != nil {
				return applicationView{}, err
			}
			return toApplicationView(a), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.ApplicationStats]{
		Method: http.MethodGet,
		Path:   "/statistics",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) (*domain.ApplicationStats, error) {
			return h.svc.Statistics(c.Request.Context(), caller)
		},
	})
	ez.RegisterAction(e, ez.Action[limitQ, []domain.VolunteerRank]{
		Method: http.MethodGet,
		Path:   "/top-volunteers",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *limitQ) ([]domain.VolunteerRank, error) {
			rs, err := h.svc.TopVolunteers(c.Request.Context(), caller, in.Limit)
			if rs == nil && err == nil {
				rs = []domain.VolunteerRank{}
			}
			return rs, err
		},
	})
}
