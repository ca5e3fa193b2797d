package repository

import (
	"Huddle/internal/model"
	"context"

	"gorm.io/gorm"
)

type ChannelRepo interface {
	ListChannels(ctx context.Context) ([]*model.Channel, error)
	Exists(ctx context.Context, id uint64) (bool, error)
}

type channelRepoImpl struct {
	db *gorm.DB
}

func NewChannelRepo(db *gorm.DB) ChannelRepo {
	return &channelRepoImpl{db: db}
}

func (s *channelRepoImpl) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	var chs []*model.Channel
	err := s.db.WithContext(ctx).Order("name ASC").Find(&chs).Error
	return chs, err
}

func (s *channelRepoImpl) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Channel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
