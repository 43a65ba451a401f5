package auth

import (
	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/domain"
)

// Requirement 单个接口的授权规则
type Requirement struct {
	Roles       []domain.Role // 任一即可；为空表示不限角色
	OwnerScoped bool          // 仅资源所有者或 Admin
	OwnerID     string
}

func AnyRole(roles ...domain.Role) Requirement { return Requirement{Roles: roles} }

func Owner(ownerID string) Requirement { return Requirement{OwnerScoped: true, OwnerID: ownerID} }

// Authorize 纯函数：未登录 → Unauthorized；角色或归属不满足 → Forbidden。
// Admin 可越过归属校验，但不会自动获得其他角色。
func Authorize(c *Claims, req Requirement) error {
	if c.UserID() == "" {
		return apperr.Unauthorized("unauthorized")
	}
	if len(req.Roles) > 0 {
		ok := false
		for _, r := range req.Roles {
			if c.HasRole(r) {
				ok = true
				break
			}
		}
		if !ok {
			return apperr.Forbidden("forbidden")
		}
	}
	if req.OwnerScoped && req.OwnerID != c.UserID() && !c.IsAdmin() {
		return apperr.Forbidden("forbidden")
	}
	return nil
}
