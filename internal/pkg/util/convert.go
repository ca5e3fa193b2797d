package util

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// canal 与 JSON 解码后的行数据字段类型不固定，这里统一转换

// StrToUint64 支持 string / float64 / int 系列 / json.Number
func StrToUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("nil value")
	case string:
		return strconv.ParseUint(x, 10, 64)
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		return uint64(x), nil
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		return uint64(x), nil
	case int32:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		return uint64(x), nil
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, fmt.Errorf("invalid integer %v", x)
		}
		return uint64(x), nil
	case fmt.Stringer:
		return strconv.ParseUint(x.String(), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// StrToInt 同 StrToUint64，允许负数
func StrToInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("nil value")
	case string:
		return strconv.Atoi(x)
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("invalid integer %v", x)
		}
		return int(x), nil
	case fmt.Stringer:
		return strconv.Atoi(x.String())
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// StrToString 空值返回 ok=false
func StrToString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// StrToTime 支持 RFC3339、canal 的 "yyyy-MM-dd HH:mm:ss" 与 time.Time
func StrToTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", x)
	case float64:
		// unix 毫秒
		return time.UnixMilli(int64(x)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}
