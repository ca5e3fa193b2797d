package dto

// SendFileReq 消息附件，一般来自 /media/upload 的返回
type SendFileReq struct {
	URL  string  `json:"url" validate:"required,url"`
	Type string  `json:"type" validate:"required,oneof=image video audio document"`
	Name *string `json:"name" validate:"omitempty,max=255"`
}

// SendMessageReq 发送消息
type SendMessageReq struct {
	Context string        `json:"context" validate:"required"`
	Body    string        `json:"body" validate:"max=8000"`
	Files   []SendFileReq `json:"files" validate:"max=10,dive"`
}

// SendMessageResp 已提交消息
type SendMessageResp struct {
	ID      uint64          `json:"id"`
	Message *DisplayMessage `json:"message,omitempty"`
}

// EditMessageReq 编辑消息正文
type EditMessageReq struct {
	Body string `json:"body" validate:"required,max=8000"`
}

// ToggleReactionReq 切换表情回应
type ToggleReactionReq struct {
	Emoji string `json:"emoji" validate:"required,max=64"`
}

// ToggleReactionResp 切换后的汇总
type ToggleReactionResp struct {
	MessageID uint64               `json:"message_id"`
	Added     bool                 `json:"added"`
	Reactions []AggregatedReaction `json:"reactions"`
}

// ListMessagesReq 历史消息查询参数
type ListMessagesReq struct {
	Context string `form:"context" validate:"required"`
	Cursor  string `form:"cursor"`
	Limit   int    `form:"limit" validate:"gte=0,lte=200"`
}
