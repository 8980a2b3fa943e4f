package db

import "time"

// Session 将 auth_id Cookie 的取值映射到登录用户。
// 主键即 Cookie 中携带的随机会话 ID。
type Session struct {
	ID        string `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	CreatedAt time.Time
}
