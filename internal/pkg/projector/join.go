package projector

// Join 关联查询结果，显式区分 "已关联" 与 "缺失"
type Join[T any] struct {
	value   T
	present bool
}

// Present 关联存在
func Present[T any](v T) Join[T] {
	return Join[T]{value: v, present: true}
}

// Missing 关联缺失
func Missing[T any]() Join[T] {
	return Join[T]{}
}

// Get 返回值与是否存在
func (j Join[T]) Get() (T, bool) {
	return j.value, j.present
}

func (j Join[T]) IsPresent() bool {
	return j.present
}

// OrElse 缺失时返回 fallback
func (j Join[T]) OrElse(fallback T) T {
	if !j.present {
		return fallback
	}
	return j.value
}
