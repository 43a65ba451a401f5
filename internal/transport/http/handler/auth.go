package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

type AuthHandler struct {
	svc *service.IdentityService
}

func NewAuthHandler(svc *service.IdentityService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

type registerOut struct {
	Message string   `json:"message"`
	UserID  string   `json:"userId"`
	Roles   []string `json:"roles"`
}

func (h *AuthHandler) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Public, ez.Action[service.RegisterInput, registerOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ *auth.Claims, in *service.RegisterInput) (registerOut, error) {
			u, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{Message: "Registration successful.", UserID: u.ID, Roles: u.Roles.Strings()}, nil
		},
	})

	ez.RegisterAction(g.Public, ez.Action[service.LoginInput, *service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ *auth.Claims, in *service.LoginInput) (*service.LoginResult, error) {
			return h.svc.Login(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, userView]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) (userView, error) {
			u, err := h.svc.Me(c.Request.Context(), caller)
			if err != nil {
				return userView{}, err
			}
			return toUserView(u), nil
		},
	})
}
