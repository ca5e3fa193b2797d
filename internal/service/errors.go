package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrInvalidContext          = errors.New("会话上下文无效")
	ErrLoginRequired           = errors.New("请先登录")
	ErrTokenRevoked            = errors.New("Token 已注销")
	ErrChannelNotFound         = errors.New("频道不存在")
	ErrMessageNotFound         = errors.New("消息不存在")
	ErrTargetUserInvalid       = errors.New("目标用户无效")
	ErrThreadNotAllowed        = errors.New("该消息不支持子话题")
	ErrEmptyMessage            = errors.New("消息内容不能为空")
	ErrFileNotSupported        = errors.New("不支持的文件类型")
	ErrFileTooLarge            = errors.New("文件过大")
	ErrRateLimited             = errors.New("请求过于频繁")
	ErrSessionClosed           = errors.New("会话已关闭")
	ErrSubscriptionSetupFailed = errors.New("实时订阅建立失败")
	ErrFetchFailed             = errors.New("消息补全失败")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrInvalidContext:          BadRequest,
	ErrLoginRequired:           Unauthorized,
	ErrTokenRevoked:            Unauthorized,
	ErrChannelNotFound:         NotFound,
	ErrMessageNotFound:         NotFound,
	ErrTargetUserInvalid:       BadRequest,
	ErrThreadNotAllowed:        BadRequest,
	ErrEmptyMessage:            BadRequest,
	ErrFileNotSupported:        BadRequest,
	ErrFileTooLarge:            BadRequest,
	ErrRateLimited:             TooManyRequests,
	ErrSessionClosed:           BadRequest,
	ErrSubscriptionSetupFailed: InternalServerError,
	ErrFetchFailed:             InternalServerError,
	UnauthorizedError:          Forbidden,
	UnExpectedError:            InternalServerError,
}

// CodeOf 按错误链查找业务码，同时返回可对外展示的哨兵错误
func CodeOf(err error) (int, error, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, err, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, target, true
		}
	}
	return 0, nil, false
}
