package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pastelog/internal/db"
	"github.com/pastelog/internal/render"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrSlugTaken     = errors.New("slug already taken")
	ErrInvalidSlug   = errors.New("slug must contain only lowercase letters, numbers, and hyphens")
	ErrInvalidFormat = errors.New("format must be 'markdown' or 'html'")
)

// PostService wraps post related database operations.
type PostService struct {
	db       *gorm.DB
	renderer *render.Renderer
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Content  string
	Slug     string
	Format   string
	AuthorID *uint
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, renderer *render.Renderer) *PostService {
	return &PostService{db: gdb, renderer: renderer}
}

// SlugTaken reports whether a post already occupies the given slug.
func (s *PostService) SlugTaken(slug string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 校验输入、推导标题、生成一次性的编辑令牌并落库。
// 先做权威的 slug 占用检查；真正撞上并发竞态时，
// 唯一索引会让插入以 ErrSlugTaken 失败。
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	format := input.Format
	if format == "" {
		format = render.FormatMarkdown
	}
	if !render.ValidFormat(format) {
		return nil, ErrInvalidFormat
	}
	if !ValidSlug(input.Slug) {
		return nil, ErrInvalidSlug
	}

	taken, err := s.SlugTaken(input.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	post := db.Post{
		Slug:      input.Slug,
		Content:   input.Content,
		Title:     s.renderer.Title(input.Content, input.Slug, format),
		Format:    format,
		EditToken: uuid.NewString(),
		AuthorID:  input.AuthorID,
		ViewCount: 0,
	}

	if err := s.db.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	return &post, nil
}

// BySlug fetches a post by slug with its author preloaded.
func (s *PostService) BySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// BySlugAndToken 以 slug 加编辑令牌取帖。找不到时统一返回 ErrPostNotFound，
// 不区分"slug 不存在"与"令牌不对"。
func (s *PostService) BySlugAndToken(slug, token string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Author").
		Where("slug = ? AND edit_token = ?", slug, token).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// RecordView 在数据库侧原子地加一次浏览计数并刷新 last_viewed_at。
// 用 UpdateColumns 绕过 gorm 的 updated_at 自动维护。
func (s *PostService) RecordView(id uint) error {
	now := time.Now()
	return s.db.Model(&db.Post{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + ?", 1),
			"last_viewed_at": now,
		}).Error
}

// Update 持久化新的内容与格式，并按（可能更新过的）格式重新推导标题。
// format 为空时沿用帖子现有格式。
func (s *PostService) Update(post *db.Post, content, format string) error {
	format = strings.TrimSpace(format)
	if format == "" {
		format = post.Format
		if format == "" {
			format = render.FormatMarkdown
		}
	}
	if !render.ValidFormat(format) {
		return ErrInvalidFormat
	}

	title := s.renderer.Title(content, post.Slug, format)

	return s.db.Model(post).Updates(map[string]interface{}{
		"content": content,
		"title":   title,
		"format":  format,
	}).Error
}

// Claim 把未认领的帖子归属到指定用户。author_id 只会从空变为非空一次，
// 已认领的帖子不再改动。
func (s *PostService) Claim(post *db.Post, userID uint) error {
	if post.AuthorID != nil {
		return nil
	}
	return s.db.Model(post).Update("author_id", userID).Error
}
