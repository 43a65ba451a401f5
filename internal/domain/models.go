package domain

import (
	"strconv"
	"strings"
)

// Models 参与 AutoMigrate 的全部表（被引用的表在前）
func Models() []any {
	return []any{
		&User{},
		&Category{},
		&ServiceRequest{},
		&VolunteerApplication{},
		&Donation{},
		&Feedback{},
	}
}

func parseOrdinal[T any](s string, all []T) (T, bool) {
	var zero T
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n >= len(all) {
		return zero, false
	}
	return all[n], true
}
