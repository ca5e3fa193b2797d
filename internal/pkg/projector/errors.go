package projector

import "errors"

// ErrInvalidMessageShape 消息类型与引用字段不一致，或正文与附件同时为空
var ErrInvalidMessageShape = errors.New("invalid message shape")
