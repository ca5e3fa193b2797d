package service

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/metrics"
	"Huddle/internal/pkg/projector"
	"Huddle/internal/pkg/util"
	"Huddle/internal/repository"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// loadContext 拉取上下文最近的消息并挂载子话题，返回投影结果与原始行数
func loadContext(ctx context.Context, messages repository.MessageRepo, key model.ConversationKey, viewerID uint64, before *util.MessageCursor, limit int) ([]*dto.DisplayMessage, int, error) {
	rows, err := messages.ListByContext(ctx, key, viewerID, before, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", key, err)
	}

	projected, invalid := projector.ProjectMessages(ctx, projector.RowsFromModels(rows), viewerID)
	if len(invalid) > 0 {
		metrics.InvalidMessages.Add(float64(len(invalid)))
	}

	if key.Kind != model.KindThread {
		parentIDs := projector.ThreadParentIDs(projected)
		replies, err := messages.ListThreadReplies(ctx, parentIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("list thread replies for %s: %w", key, err)
		}
		projector.AssembleThreads(ctx, projected, parentIDs, projector.RowsFromModels(replies), viewerID)
	}

	return projected, len(rows), nil
}

// fetchMessage 不存在时转为 ErrMessageNotFound
func fetchMessage(ctx context.Context, messages repository.MessageRepo, id uint64) (*model.Message, error) {
	msg, err := messages.FetchMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// canView 私信双方可见，子话题回复继承父消息的可见性
func canView(ctx context.Context, messages repository.MessageRepo, viewerID uint64, msg *model.Message) (bool, error) {
	switch msg.Type {
	case model.MessageTypeChannel:
		return true, nil
	case model.MessageTypeDirect, model.MessageTypeBot:
		if viewerID == 0 {
			return false, nil
		}
		return msg.AuthorID == viewerID || util.Deref(msg.ReceiverID) == viewerID, nil
	case model.MessageTypeThread:
		if msg.ParentID == nil {
			return false, nil
		}
		parent, err := fetchMessage(ctx, messages, *msg.ParentID)
		if err != nil {
			return false, err
		}
		if parent.Type == model.MessageTypeThread {
			return false, nil
		}
		return canView(ctx, messages, viewerID, parent)
	default:
		return false, nil
	}
}
