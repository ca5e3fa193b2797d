package repository

import (
	"Huddle/internal/model"
	"context"

	"gorm.io/gorm"
)

type ReactionRepo interface {
	FetchReactionsForMessage(ctx context.Context, messageID uint64) ([]*model.Reaction, error)
	ToggleReaction(ctx context.Context, messageID, userID uint64, emoji string) (bool, error)
}

type reactionRepoImpl struct {
	db *gorm.DB
}

func NewReactionRepo(db *gorm.DB) ReactionRepo {
	return &reactionRepoImpl{db: db}
}

// FetchReactionsForMessage 按写入顺序返回，汇总顺序依赖于此
func (s *reactionRepoImpl) FetchReactionsForMessage(ctx context.Context, messageID uint64) ([]*model.Reaction, error) {
	var rs []*model.Reaction
	err := s.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC, id ASC").
		Find(&rs).Error
	return rs, err
}

// ToggleReaction 已存在则删除，否则新增，返回是否为新增
func (s *reactionRepoImpl) ToggleReaction(ctx context.Context, messageID, userID uint64, emoji string) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
			Delete(&model.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		added = true
		return tx.Create(&model.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}).Error
	})
	return added, err
}
