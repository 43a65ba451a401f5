package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/ez"
)

// FeedbackHandler 由 features.feedback 控制是否挂载
type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func (h *FeedbackHandler) MountAPI(g ez.Groups) {
	e := g.Authed.Group("/feedback")

	ez.RegisterAction(e, ez.Action[service.FeedbackInput, feedbackView]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *service.FeedbackInput) (feedbackView, error) {
			f, err := h.svc.Leave(c.Request.Context(), caller, *in)
			if err != nil {
				return feedbackView{}, err
			}
			return toFeedbackView(f), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []feedbackView]{
		Method: http.MethodGet,
		Path:   "/by-request/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]feedbackView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			fs, err := h.svc.ByRequest(c.Request.Context(), caller, id)
			if err != nil {
				return nil, err
			}
			return mapAll(fs, toFeedbackView), nil
		},
	})
	ez.RegisterAction(e, ez.Action[limitQ, []testimonialView]{
		Method: http.MethodGet,
		Path:   "/testimonials",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, in *limitQ) ([]testimonialView, error) {
			fs, err := h.svc.Testimonials(c.Request.Context(), caller, in.Limit)
			if err != nil {
				return nil, err
			}
			return mapAll(fs, toTestimonialView), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.FeedbackStats]{
		Method: http.MethodGet,
		Path:   "/statistics",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) (*domain.FeedbackStats, error) {
			return h.svc.Statistics(c.Request.Context(), caller)
		},
	})
	h.mountAdmin(e)
}

func (h *FeedbackHandler) MountAdmin(e ez.EZ) { h.mountAdmin(e.Group("/feedback")) }

func (h *FeedbackHandler) mountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, []feedbackView]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]feedbackView, error) {
			fs, err := h.svc.All(c.Request.Context(), caller)
			if err != nil {
				return nil, err
			}
			return mapAll(fs, toFeedbackView), nil
		},
	})
}
