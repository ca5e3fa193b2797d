package repository

import (
	"Huddle/internal/model"
	"Huddle/internal/pkg/util"
	"context"
	"fmt"

	"gorm.io/gorm"
)

type MessageRepo interface {
	FetchMessageByID(ctx context.Context, id uint64) (*model.Message, error)
	ListByContext(ctx context.Context, key model.ConversationKey, viewerID uint64, before *util.MessageCursor, limit int) ([]*model.Message, error)
	ListThreadReplies(ctx context.Context, parentIDs []uint64) ([]*model.Message, error)
	CreateMessage(ctx context.Context, msg *model.Message, files []*model.MessageFile) error
	UpdateBody(ctx context.Context, id, authorID uint64, body string) (int64, error)
	DeleteMessage(ctx context.Context, id, authorID uint64) (int64, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

// withJoins 作者、附件、表情回应一次性预加载
func withJoins(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Files", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, id ASC")
		}).
		Preload("Reactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC, id ASC")
		})
}

// FetchMessageByID 按 id 查询完整消息，不存在时返回 gorm.ErrRecordNotFound
func (s *messageRepoImpl) FetchMessageByID(ctx context.Context, id uint64) (*model.Message, error) {
	var msg model.Message
	err := withJoins(s.db.WithContext(ctx)).First(&msg, id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByContext 上下文内最近 limit 条，按时间升序返回
func (s *messageRepoImpl) ListByContext(ctx context.Context, key model.ConversationKey, viewerID uint64, before *util.MessageCursor, limit int) ([]*model.Message, error) {
	query := s.db.WithContext(ctx).Model(&model.Message{})

	switch key.Kind {
	case model.KindChannel:
		query = query.Where("type = ? AND channel_id = ?", model.MessageTypeChannel, key.ID)
	case model.KindThread:
		query = query.Where("type = ? AND parent_id = ?", model.MessageTypeThread, key.ID)
	case model.KindDM:
		query = query.
			Where("type IN ?", []string{model.MessageTypeDirect, model.MessageTypeBot}).
			Where("((author_id = ? AND receiver_id = ?) OR (author_id = ? AND receiver_id = ?))",
				viewerID, key.ID, key.ID, viewerID)
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidConversationKey, key.String())
	}

	if before != nil {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", before.CreatedAt, before.CreatedAt, before.ID)
	}

	var msgs []*model.Message
	err := withJoins(query).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListThreadReplies 一批父消息的全部回复
func (s *messageRepoImpl) ListThreadReplies(ctx context.Context, parentIDs []uint64) ([]*model.Message, error) {
	if len(parentIDs) == 0 {
		return []*model.Message{}, nil
	}
	var msgs []*model.Message
	err := withJoins(s.db.WithContext(ctx)).
		Where("type = ? AND parent_id IN ?", model.MessageTypeThread, parentIDs).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

// CreateMessage 开启事务写入消息及附件
func (s *messageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message, files []*model.MessageFile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Files", "Reactions").Create(msg).Error; err != nil {
			return err
		}
		for i, f := range files {
			f.MessageID = msg.ID
			f.SortOrder = int8(i)
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return err
			}
		}
		msg.Files = files
		return nil
	})
}

// UpdateBody 只允许作者修改，返回受影响行数
func (s *messageRepoImpl) UpdateBody(ctx context.Context, id, authorID uint64, body string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Update("body", body)
	return res.RowsAffected, res.Error
}

// DeleteMessage 只允许作者删除，连同附件、表情与子话题回复
func (s *messageRepoImpl) DeleteMessage(ctx context.Context, id, authorID uint64) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND author_id = ?", id, authorID).Delete(&model.Message{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}

		var replyIDs []uint64
		if err := tx.Model(&model.Message{}).Where("type = ? AND parent_id = ?", model.MessageTypeThread, id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids := append(replyIDs, id)
		if err := tx.Where("message_id IN ?", ids).Delete(&model.MessageFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id IN ?", ids).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			return tx.Where("id IN ?", replyIDs).Delete(&model.Message{}).Error
		}
		return nil
	})
	return affected, err
}
