package db

import (
	"errors"
	"fmt"
	"time"

	"palace-guide/catalog"
	"palace-guide/config"
	"palace-guide/logger"
	"palace-guide/model"
	"palace-guide/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB 连接 PostgreSQL，自动迁移表结构，空表时导入初始数据
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	// 带重试的数据库连接 (Docker 启动时数据库可能还没准备好)
	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < maxRetries; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			break
		}
		logger.L().Warn("db_waiting", "attempt", i+1, "max", maxRetries, "err", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 自动迁移模式 (自动创建表结构)
	if err := conn.AutoMigrate(&model.User{}, &model.Building{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	if err := Seed(conn); err != nil {
		return nil, err
	}

	logger.L().Info("db_ready", "host", cfg.Host, "name", cfg.Name)
	return conn, nil
}

// Seed 表为空时导入示例用户和内置建筑目录
func Seed(conn *gorm.DB) error {
	var userCount int64
	if err := conn.Model(&model.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("统计用户失败: %w", err)
	}
	if userCount == 0 {
		users, err := SampleUsers()
		if err != nil {
			return err
		}
		if err := conn.Create(&users).Error; err != nil {
			return fmt.Errorf("插入用户失败: %w", err)
		}
		logger.L().Info("db_seed_users", "count", len(users))
	}

	var buildingCount int64
	if err := conn.Model(&model.Building{}).Count(&buildingCount).Error; err != nil {
		return fmt.Errorf("统计建筑失败: %w", err)
	}
	if buildingCount == 0 {
		buildings, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("解析建筑目录失败: %w", err)
		}
		if err := conn.CreateInBatches(buildings, 100).Error; err != nil {
			return fmt.Errorf("插入建筑失败: %w", err)
		}
		logger.L().Info("db_seed_buildings", "count", len(buildings))
	}
	return nil
}

var sampleNames = []string{"김철수", "이영희", "박민수", "최지영", "정현우"}

// SampleUsers 示例账号 user1..5@example.com / password1..5 (密码已 bcrypt 加密)
func SampleUsers() ([]model.User, error) {
	users := make([]model.User, 0, len(sampleNames))
	for i, name := range sampleNames {
		n := i + 1
		hash, err := utils.HashPassword(fmt.Sprintf("password%d", n))
		if err != nil {
			return nil, fmt.Errorf("密码加密失败: %w", err)
		}
		users = append(users, model.User{
			Email:    fmt.Sprintf("user%d@example.com", n),
			Password: hash,
			Name:     name,
		})
	}
	return users, nil
}

// ErrUserNotFound 用户不存在
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists 邮箱已被注册
var ErrUserExists = errors.New("user already exists")
