package util

import "strings"

// Ptr 取任意值的指针
func Ptr[T any](v T) *T {
	return &v
}

// Deref 空指针返回零值
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// EqualPtr 两个指针都为空或值相等
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// TrimToEmpty nil 与纯空白均视为空串
func TrimToEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// OriginAllowed allowed 为空表示不限制，"*" 匹配任意来源
func OriginAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
