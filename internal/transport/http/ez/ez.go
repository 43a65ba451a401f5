// Package ez 显式路由表：每个接口一条 Action 声明（方法/路径/绑定/鉴权/处理函数）
package ez

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	mdw "go-community-hub/internal/transport/http/middleware"
	resp "go-community-hub/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group 子分组，继承日志
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// Groups 同一前缀下的公开分组与已登录分组
type Groups struct {
	Public EZ
	Authed EZ
}

// 绑定方式
type Binder string

const (
	BindJSON         Binder = "json"          // 从 JSON 绑定
	BindOptionalJSON Binder = "optional_json" // 允许空请求体
	BindQuery        Binder = "query"         // 从 URL ?a=b 绑定
	BindNone         Binder = "none"          // 不绑定，自己从 c.Param 取
)

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool          // 要求登录
	Roles   []domain.Role // 任一即可（隐含 Auth）
	Status  int           // 成功状态码，默认 200；204 不写响应体
	Handler func(c *gin.Context, caller *auth.Claims, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		caller := mdw.Claims(c)
		// 1) 鉴权/角色
		if a.Auth || len(a.Roles) > 0 {
			if err := auth.Authorize(caller, auth.AnyRole(a.Roles...)); err != nil {
				Fail(c, e.log, err)
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindOptionalJSON:
			if bindErr = c.ShouldBindJSON(&in); errors.Is(bindErr, io.EOF) {
				bindErr = nil
			}
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "malformed request: "+bindErr.Error()))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, caller, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail 统一错误映射：内部错误只记日志，对外返回通用 500
func Fail(c *gin.Context, l *zap.Logger, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, resp.Error(resp.CodeTimeout, "timeout"))
		return
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		l.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
		return
	}
	status := ae.Kind.HTTPStatus()
	if len(ae.Fields) > 0 {
		c.AbortWithStatusJSON(status, resp.Fail(status, ae.Msg, gin.H{"errors": ae.Fields}))
		return
	}
	c.AbortWithStatusJSON(status, resp.Error(status, ae.Msg))
}

// ParamID 路径里的正整数 ID
func ParamID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Invalid(name, "must be a positive integer")
	}
	return uint(n), nil
}
