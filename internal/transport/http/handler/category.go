package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Public, ez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/servicerequestcategories",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Claims, _ *struct{}) ([]domain.Category, error) {
			cs, err := h.svc.List(c.Request.Context())
			if cs == nil && err == nil {
				cs = []domain.Category{}
			}
			return cs, err
		},
	})
	h.mountWrites(g.Authed)
}

func (h *CategoryHandler) MountAdmin(e ez.EZ) { h.mountWrites(e) }

func (h *CategoryHandler) mountWrites(e ez.EZ) {
	admin := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[service.CategoryInput, *domain.Category]{
		Method: http.MethodPost,
		Path:   "/servicerequestcategories",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.CategoryInput) (*domain.Category, error) {
			return h.svc.Create(c.Request.Context(), caller, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.CategoryInput, *domain.Category]{
		Method: http.MethodPut,
		Path:   "/servicerequestcategories/:id",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.CategoryInput) (*domain.Category, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), caller, id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/servicerequestcategories/:id",
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
