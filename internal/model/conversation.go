package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidConversationKey = errors.New("invalid conversation key")

// ConversationKind 会话上下文类别
type ConversationKind string

const (
	KindChannel ConversationKind = "channel"
	KindDM      ConversationKind = "dm"
	KindThread  ConversationKind = "thread"
)

// ConversationKey 会话上下文寻址键：channel:<channel_id> / dm:<对方 user_id> / thread:<父消息 id>
type ConversationKey struct {
	Kind ConversationKind
	ID   uint64
}

func ChannelKey(channelID uint64) ConversationKey {
	return ConversationKey{Kind: KindChannel, ID: channelID}
}

func DMKey(peerID uint64) ConversationKey {
	return ConversationKey{Kind: KindDM, ID: peerID}
}

func ThreadKey(parentID uint64) ConversationKey {
	return ConversationKey{Kind: KindThread, ID: parentID}
}

// ParseConversationKey 解析 "kind:id" 形式的键
func ParseConversationKey(s string) (ConversationKey, error) {
	kind, rawID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ConversationKey{}, fmt.Errorf("%w: %q", ErrInvalidConversationKey, s)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return ConversationKey{}, fmt.Errorf("%w: %q", ErrInvalidConversationKey, s)
	}
	switch ConversationKind(kind) {
	case KindChannel, KindDM, KindThread:
		return ConversationKey{Kind: ConversationKind(kind), ID: id}, nil
	default:
		return ConversationKey{}, fmt.Errorf("%w: %q", ErrInvalidConversationKey, s)
	}
}

func (k ConversationKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.Kind) + ":" + strconv.FormatUint(k.ID, 10)
}

func (k ConversationKey) IsZero() bool {
	return k.Kind == "" && k.ID == 0
}

func (k ConversationKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ConversationKey) UnmarshalText(text []byte) error {
	parsed, err := ParseConversationKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// RequiresViewer 私信上下文必须有登录用户
func (k ConversationKey) RequiresViewer() bool {
	return k.Kind == KindDM
}

// Matches 判断一条消息行是否属于该上下文，只看标量字段
func (k ConversationKey) Matches(viewerID uint64, m *Message) bool {
	if m == nil {
		return false
	}
	switch k.Kind {
	case KindChannel:
		return m.Type == MessageTypeChannel && m.ChannelID != nil && *m.ChannelID == k.ID
	case KindThread:
		return m.Type == MessageTypeThread && m.ParentID != nil && *m.ParentID == k.ID
	case KindDM:
		if viewerID == 0 || m.ReceiverID == nil {
			return false
		}
		if m.Type != MessageTypeDirect && m.Type != MessageTypeBot {
			return false
		}
		receiver := *m.ReceiverID
		return (m.AuthorID == viewerID && receiver == k.ID) ||
			(m.AuthorID == k.ID && receiver == viewerID)
	default:
		return false
	}
}
