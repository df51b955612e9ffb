package model

import (
	"strings"

	"gorm.io/gorm"
)

// User 用户结构体 (用于登录认证)
type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"` // 邮箱唯一且不为空, 作为登录名
	Password string `json:"-" gorm:"not null"`                 // bcrypt 加密后的密码
	Name     string `json:"name"`                              // 显示名称
}

// Username 邮箱 @ 之前的部分
func (u *User) Username() string {
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}
