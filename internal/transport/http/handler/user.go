package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

type promoteIn struct {
	Role string `json:"role"`
}

func (h *UserHandler) MountAPI(g ez.Groups) { h.mount(g.Authed) }

func (h *UserHandler) MountAdmin(e ez.EZ) { h.mount(e) }

func (h *UserHandler) mount(e ez.EZ) {
	admin := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[struct{}, []userView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]userView, error) {
			us, err := h.svc.List(c.Request.Context(), caller)
			if err != nil {
				return nil, err
			}
			return mapAll(us, toUserView), nil
		},
	})

	// 请求体可省略，默认授予 Admin
	ez.RegisterAction(e, ez.Action[promoteIn, userView]{
		Method: http.MethodPut,
		Path:   "/users/:id/promote",
		Binder: ez.BindOptionalJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, caller *auth.Claims, in *promoteIn) (userView, error) {
			u, err := h.svc.Promote(c.Request.Context(), caller, c.Param("id"), in.Role)
			if err != nil {
				return userView{}, err
			}
			return toUserView(u), nil
		},
	})
}
