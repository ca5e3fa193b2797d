package service

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/consts"
	"Huddle/internal/pkg/projector"
	"Huddle/internal/pkg/util"
	"Huddle/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type ChatService interface {
	ListChannels(ctx context.Context) ([]*dto.ChannelDTO, error)
	ListMessages(ctx context.Context, viewerID uint64, key model.ConversationKey, cursor string, limit int) (*dto.MessagePage, error)
	GetThread(ctx context.Context, viewerID uint64, parentID uint64) ([]*dto.DisplayMessage, error)
	SendMessage(ctx context.Context, userID uint64, key model.ConversationKey, body string, files []dto.SendFileReq) (*dto.DisplayMessage, error)
	EditMessage(ctx context.Context, userID, messageID uint64, body string) (*dto.DisplayMessage, error)
	DeleteMessage(ctx context.Context, userID, messageID uint64) error
	ToggleReaction(ctx context.Context, userID, messageID uint64, emoji string) (*dto.ToggleReactionResp, error)
}

type chatServiceImpl struct {
	messages  repository.MessageRepo
	reactions repository.ReactionRepo
	channels  repository.ChannelRepo
	profiles  repository.ProfileRepo
}

func NewChatService(messages repository.MessageRepo, reactions repository.ReactionRepo, channels repository.ChannelRepo, profiles repository.ProfileRepo) ChatService {
	return &chatServiceImpl{
		messages:  messages,
		reactions: reactions,
		channels:  channels,
		profiles:  profiles,
	}
}

// ListChannels 频道列表
func (s *chatServiceImpl) ListChannels(ctx context.Context) ([]*dto.ChannelDTO, error) {
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ChannelDTO, 0, len(channels))
	if err = copier.Copy(&out, &channels); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMessages 上下文历史消息，cursor 为上一页返回的 next_cursor
func (s *chatServiceImpl) ListMessages(ctx context.Context, viewerID uint64, key model.ConversationKey, cursor string, limit int) (*dto.MessagePage, error) {
	if key.IsZero() {
		return nil, ErrInvalidContext
	}
	if key.RequiresViewer() && viewerID == 0 {
		return nil, ErrLoginRequired
	}
	before, err := util.DecodeCursor(cursor)
	if err != nil {
		return nil, ErrParamInvalid
	}
	limit = clampLimit(limit)

	if key.Kind == model.KindThread {
		if _, err = s.visibleParent(ctx, viewerID, key.ID); err != nil {
			return nil, err
		}
	}

	msgs, raw, err := loadContext(ctx, s.messages, key, viewerID, before, limit)
	if err != nil {
		return nil, err
	}

	page := &dto.MessagePage{Context: key.String(), Messages: msgs}
	if raw == limit && len(msgs) > 0 {
		first := msgs[0]
		page.NextCursor = util.EncodeCursor(util.MessageCursor{CreatedAt: first.CreatedAt, ID: first.ID})
	}
	return page, nil
}

// GetThread 父消息下的全部回复，按时间升序
func (s *chatServiceImpl) GetThread(ctx context.Context, viewerID uint64, parentID uint64) ([]*dto.DisplayMessage, error) {
	if _, err := s.visibleParent(ctx, viewerID, parentID); err != nil {
		return nil, err
	}
	replies, err := s.messages.ListThreadReplies(ctx, []uint64{parentID})
	if err != nil {
		return nil, err
	}
	grouped := projector.GroupReplies(ctx, projector.RowsFromModels(replies), viewerID)
	out := grouped[parentID]
	if out == nil {
		out = []*dto.DisplayMessage{}
	}
	return out, nil
}

// SendMessage 写入消息并返回投影结果，实时回显由变更流合并
func (s *chatServiceImpl) SendMessage(ctx context.Context, userID uint64, key model.ConversationKey, body string, files []dto.SendFileReq) (*dto.DisplayMessage, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	body = strings.TrimSpace(body)
	if body == "" && len(files) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &model.Message{AuthorID: userID}
	if body != "" {
		msg.Body = &body
	}

	switch key.Kind {
	case model.KindChannel:
		ok, err := s.channels.Exists(ctx, key.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrChannelNotFound
		}
		msg.Type = model.MessageTypeChannel
		msg.ChannelID = util.Ptr(key.ID)
	case model.KindDM:
		if key.ID == userID {
			return nil, ErrTargetUserInvalid
		}
		ok, err := s.profiles.Exists(ctx, key.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrTargetUserInvalid
		}
		msg.Type = model.MessageTypeDirect
		msg.ReceiverID = util.Ptr(key.ID)
	case model.KindThread:
		if _, err := s.visibleParent(ctx, userID, key.ID); err != nil {
			return nil, err
		}
		msg.Type = model.MessageTypeThread
		msg.ParentID = util.Ptr(key.ID)
	default:
		return nil, ErrInvalidContext
	}

	attachments := make([]*model.MessageFile, 0, len(files))
	for _, f := range files {
		if !util.IsFileType(f.Type) {
			return nil, ErrFileNotSupported
		}
		attachments = append(attachments, &model.MessageFile{
			URL:      f.URL,
			FileType: f.Type,
			Name:     f.Name,
		})
	}

	if err := s.messages.CreateMessage(ctx, msg, attachments); err != nil {
		log.ErrorContext(ctx, "create message failed", "context", key.String(), "err", err)
		return nil, UnExpectedError
	}

	return s.project(ctx, msg.ID, userID)
}

// EditMessage 只能编辑自己的消息
func (s *chatServiceImpl) EditMessage(ctx context.Context, userID, messageID uint64, body string) (*dto.DisplayMessage, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	msg, err := fetchMessage(ctx, s.messages, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != userID {
		return nil, UnauthorizedError
	}
	affected, err := s.messages.UpdateBody(ctx, messageID, userID, body)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrMessageNotFound
	}
	return s.project(ctx, messageID, userID)
}

// DeleteMessage 删除自己的消息，连带附件、回应与子话题
func (s *chatServiceImpl) DeleteMessage(ctx context.Context, userID, messageID uint64) error {
	if userID == 0 {
		return ErrLoginRequired
	}
	msg, err := fetchMessage(ctx, s.messages, messageID)
	if err != nil {
		return err
	}
	if msg.AuthorID != userID {
		return UnauthorizedError
	}
	affected, err := s.messages.DeleteMessage(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ToggleReaction 切换表情回应并返回最新汇总
func (s *chatServiceImpl) ToggleReaction(ctx context.Context, userID, messageID uint64, emoji string) (*dto.ToggleReactionResp, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, ErrParamInvalid
	}
	msg, err := fetchMessage(ctx, s.messages, messageID)
	if err != nil {
		return nil, err
	}
	visible, err := canView(ctx, s.messages, userID, msg)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrMessageNotFound
	}

	added, err := s.reactions.ToggleReaction(ctx, messageID, userID, emoji)
	if err != nil {
		return nil, err
	}
	rows, err := s.reactions.FetchReactionsForMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleReactionResp{
		MessageID: messageID,
		Added:     added,
		Reactions: projector.AggregateReactions(projector.ReactionRows(rows), userID),
	}, nil
}

// visibleParent 子话题父消息必须存在、可挂载且对当前用户可见
func (s *chatServiceImpl) visibleParent(ctx context.Context, viewerID, parentID uint64) (*model.Message, error) {
	parent, err := fetchMessage(ctx, s.messages, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.CanHaveThread() {
		return nil, ErrThreadNotAllowed
	}
	visible, err := canView(ctx, s.messages, viewerID, parent)
	if err != nil {
		return nil, err
	}
	if !visible {
		// 不暴露私信的存在
		return nil, ErrMessageNotFound
	}
	return parent, nil
}

func (s *chatServiceImpl) project(ctx context.Context, messageID, viewerID uint64) (*dto.DisplayMessage, error) {
	stored, err := fetchMessage(ctx, s.messages, messageID)
	if err != nil {
		return nil, err
	}
	out, err := projector.ProjectMessage(projector.RowFromModel(stored), viewerID)
	if err != nil {
		if errors.Is(err, projector.ErrInvalidMessageShape) {
			log.WarnContext(ctx, "stored message has invalid shape", "message_id", messageID, "err", err)
		}
		return nil, UnExpectedError
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return consts.DefaultMessageLimit
	}
	if limit > consts.MaxMessageLimit {
		return consts.MaxMessageLimit
	}
	return limit
}
