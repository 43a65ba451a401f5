package utils

import "github.com/google/uuid"

// NewID 生成用户等实体的字符串主键
func NewID() string { return uuid.NewString() }
