package db

import (
	"time"

	"gorm.io/gorm"
)

// Post 定义了帖子模型。slug 与 edit_token 均带唯一索引，
// 前者保证地址唯一，后者为编辑凭证的正确性兜底。
type Post struct {
	gorm.Model
	Slug         string `gorm:"uniqueIndex;not null"`
	Content      string
	Title        string
	Format       string `gorm:"not null;default:markdown"`
	EditToken    string `gorm:"uniqueIndex;not null"`
	AuthorID     *uint  `gorm:"index"`
	Author       *User
	ViewCount    int64 `gorm:"not null;default:0"`
	LastViewedAt *time.Time
}
