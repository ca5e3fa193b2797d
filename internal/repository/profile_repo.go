package repository

import (
	"Huddle/internal/model"
	"context"

	"gorm.io/gorm"
)

type ProfileRepo interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

type profileRepoImpl struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &profileRepoImpl{db: db}
}

// Exists 私信目标是否存在
func (s *profileRepoImpl) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
