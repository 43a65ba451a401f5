package domain

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleVolunteer Role = "Volunteer"
	RoleDonor     Role = "Donor"
	RoleUser      Role = "User"
)

var allRoles = []Role{RoleAdmin, RoleVolunteer, RoleDonor, RoleUser}

// ParseRole 大小写不敏感
func ParseRole(s string) (Role, bool) {
	return parseEnum(s, allRoles)
}

// RoleSet 用户角色集合：有序、去重、只增不减，落库为逗号分隔字符串
type RoleSet []Role

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

// With 返回包含 r 的新集合；已持有时原样返回
func (s RoleSet) With(r Role) RoleSet {
	if r == "" || s.Has(r) {
		return s
	}
	out := make(RoleSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, r)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) Value() (driver.Value, error) {
	return strings.Join(s.Strings(), ","), nil
}

func (s *RoleSet) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("roleset: unsupported scan type %T", src)
	}
	var out RoleSet
	for _, part := range strings.Split(raw, ",") {
		if r, ok := ParseRole(strings.TrimSpace(part)); ok {
			out = out.With(r)
		}
	}
	*s = out
	return nil
}

func parseEnum[T ~string](raw string, all []T) (T, bool) {
	raw = strings.TrimSpace(raw)
	for _, v := range all {
		if strings.EqualFold(raw, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
