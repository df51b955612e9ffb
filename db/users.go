package db

import (
	"context"
	"errors"
	"fmt"

	"palace-guide/model"

	"gorm.io/gorm"
)

// UserStore 用户存取
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]model.User, error)
}

// GormUserStore 基于 users 表的实现
type GormUserStore struct {
	db *gorm.DB
}

// NewUserStore 创建 gorm 用户存储
func NewUserStore(conn *gorm.DB) *GormUserStore {
	return &GormUserStore{db: conn}
}

// FindByEmail 按邮箱查找; 不存在时返回 ErrUserNotFound
func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// Create 新建用户; 邮箱重复时返回 ErrUserExists
func (s *GormUserStore) Create(ctx context.Context, user *model.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("查询用户失败: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

// List 按 ID 顺序返回所有用户
func (s *GormUserStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return users, nil
}
