package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/domain"
)

func claimsFor(id string, roles ...domain.Role) *Claims {
	return &Claims{
		Roles:            domain.NewRoleSet(roles...).Strings(),
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	}
}

func TestAuthorize(t *testing.T) {
	owner := claimsFor("owner", domain.RoleUser)
	stranger := claimsFor("stranger", domain.RoleUser)
	admin := claimsFor("admin", domain.RoleUser, domain.RoleAdmin)
	donor := claimsFor("donor", domain.RoleUser, domain.RoleDonor)

	cases := []struct {
		name   string
		claims *Claims
		req    Requirement
		want   apperr.Kind
		allow  bool
	}{
		{"anonymous", nil, Requirement{}, apperr.KindUnauthorized, false},
		{"empty subject", &Claims{}, Requirement{}, apperr.KindUnauthorized, false},
		{"any authenticated", stranger, Requirement{}, 0, true},
		{"role held", donor, AnyRole(domain.RoleDonor), 0, true},
		{"role missing", stranger, AnyRole(domain.RoleDonor), apperr.KindForbidden, false},
		{"admin does not imply donor", admin, AnyRole(domain.RoleDonor), apperr.KindForbidden, false},
		{"one of several roles", donor, AnyRole(domain.RoleAdmin, domain.RoleDonor), 0, true},
		{"owner", owner, Owner("owner"), 0, true},
		{"non owner", stranger, Owner("owner"), apperr.KindForbidden, false},
		{"admin overrides ownership", admin, Owner("owner"), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.claims, tc.req)
			if tc.allow {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, apperr.KindOf(err))
		})
	}
}
