package consts

const (
	MimePrefixImage = "image"
	MimePrefixAudio = "audio"
	MimePrefixVideo = "video"
)

const (
	// UnknownUsername 作者资料缺失时的占位名
	UnknownUsername = "Unknown"
)

// 订阅的行变更表
const (
	TableMessages     = "messages"
	TableReactions    = "reactions"
	TableMessageFiles = "message_files"
)

// 视图槽位，一个会话内的观察者
const (
	ViewMain   = "main"
	ViewThread = "thread"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)
