package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type ServiceRequestHandler struct {
	svc *service.ServiceRequestService
}

func NewServiceRequestHandler(svc *service.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{svc: svc}
}

type listRequestsQ struct {
	Status string `form:"status"`
}

func (h *ServiceRequestHandler) MountAPI(g ez.Groups) {
	pub := g.Public
	ez.RegisterAction(pub, ez.Action[listRequestsQ, []requestView]{
		Method: http.MethodGet,
		Path:   "/servicerequests",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *auth.Claims, in *listRequestsQ) ([]requestView, error) {
			return views(h.svc.List(c.Request.Context(), in.Status))
		},
	})
	ez.RegisterAction(pub, ez.Action[struct{}, []requestView]{
		Method: http.MethodGet,
		Path:   "/servicerequests/all",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) ([]requestView, error) {
			return views(h.svc.List(c.Request.Context(), ""))
		},
	})
	ez.RegisterAction(pub, ez.Action[struct{}, []requestView]{
		Method: http.MethodGet,
		Path:   "/servicerequests/featured",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) ([]requestView, error) {
			return views(h.svc.Featured(c.Request.Context()))
		},
	})
	ez.RegisterAction(pub, ez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/servicerequests/categories",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) ([]domain.Category, error) {
			cs, err := h.svc.UsedCategories(c.Request.Context())
			if cs == nil && err == nil {
				cs = []domain.Category{}
			}
			return cs, err
		},
	})
	ez.RegisterAction(pub, ez.Action[struct{}, *domain.ServiceRequestStats]{
		Method: http.MethodGet,
		Path:   "/servicerequests/statistics",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) (*domain.ServiceRequestStats, error) {
			return h.svc.Statistics(c.Request.Context())
		},
	})
	ez.RegisterAction(pub, ez.Action[struct{}, requestView]{
		Method: http.MethodGet,
		Path:   "/servicerequests/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) (requestView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return requestView{}, err
			}
			return view(h.svc.Get(c.Request.Context(), id))
		},
	})

	authed := g.Authed
	ez.RegisterAction(authed, ez.Action[service.CreateRequestInput, requestView]{
		Method: http.MethodPost,
		Path:   "/servicerequests",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.CreateRequestInput) (requestView, error) {
			return view(h.svc.Create(c.Request.Context(), caller, *in))
		},
	})
	ez.RegisterAction(authed, ez.Action[struct{}, []requestView]{
		Method: http.MethodGet,
		Path:   "/servicerequests/mine",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]requestView, error) {
			return views(h.svc.Mine(c.Request.Context(), caller))
		},
	})
	ez.RegisterAction(authed, ez.Action[service.StatusInput, requestView]{
		Method: http.MethodPut,
		Path:   "/servicerequests/:id/status",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.StatusInput) (requestView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return requestView{}, err
			}
			return view(h.svc.UpdateStatus(c.Request.Context(), caller, id, *in))
		},
	})
	h.mountAdmin(authed)
}

func (h *ServiceRequestHandler) MountAdmin(e ez.EZ) { h.mountAdmin(e) }

func (h *ServiceRequestHandler) mountAdmin(e ez.EZ) {
	admin := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[service.StatusInput, requestView]{
		Method: http.MethodPut,
		Path:   "/servicerequests/:id/admin-status",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.StatusInput) (requestView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return requestView{}, err
			}
			return view(h.svc.AdminUpdateStatus(c.Request.Context(), caller, id, *in))
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/servicerequests/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.Delete(c.Request.Context(), caller, id)
		},
	})
}

func view(sr *domain.ServiceRequest, err error) (requestView, error) {
	if err != nil {
		return requestView{}, err
	}
	return toRequestView(sr), nil
}

func views(rs []domain.ServiceRequest, err error) ([]requestView, error) {
	if err != nil {
		return nil, err
	}
	return mapAll(rs, toRequestView), nil
}
