package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pastelog/internal/db"
	"github.com/pastelog/internal/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Session{}, &db.Post{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func newTestPostService(t *testing.T) (*PostService, *gorm.DB) {
	t.Helper()
	gdb := setupServiceTestDB(t)
	return NewPostService(gdb, render.New()), gdb
}

func TestPostServiceCreateDerivesFields(t *testing.T) {
	svc, _ := newTestPostService(t)

	post, err := svc.Create(PostInput{Content: "# Hello\nWorld", Slug: "my-post"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if post.Title != "Hello" {
		t.Errorf("expected derived title Hello, got %q", post.Title)
	}
	if post.Format != render.FormatMarkdown {
		t.Errorf("expected default format markdown, got %q", post.Format)
	}
	if post.EditToken == "" {
		t.Error("expected a generated edit token")
	}
	if post.ViewCount != 0 {
		t.Errorf("expected view count 0, got %d", post.ViewCount)
	}
	if post.AuthorID != nil {
		t.Error("expected anonymous post to have no author")
	}
}

func TestPostServiceCreateHTMLTitle(t *testing.T) {
	svc, _ := newTestPostService(t)

	post, err := svc.Create(PostInput{
		Content: "<h1>Hi <b>there</b></h1><p>body</p>",
		Slug:    "html-post",
		Format:  render.FormatHTML,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if post.Title != "Hi there" {
		t.Errorf("expected stripped title, got %q", post.Title)
	}
}

func TestPostServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestPostService(t)

	if _, err := svc.Create(PostInput{Content: "x", Slug: "Bad Slug"}); !errors.Is(err, ErrInvalidSlug) {
		t.Errorf("expected ErrInvalidSlug, got %v", err)
	}
	if _, err := svc.Create(PostInput{Content: "x", Slug: "ok", Format: "docx"}); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestPostServiceDuplicateSlug(t *testing.T) {
	svc, gdb := newTestPostService(t)

	first, err := svc.Create(PostInput{Content: "# First", Slug: "my-post"})
	if err != nil {
		t.Fatalf("create first post: %v", err)
	}

	if _, err := svc.Create(PostInput{Content: "# Second", Slug: "my-post"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	var stored db.Post
	if err := gdb.First(&stored, first.ID).Error; err != nil {
		t.Fatalf("reload first post: %v", err)
	}
	if stored.Content != "# First" {
		t.Errorf("first post content changed to %q", stored.Content)
	}
}

func TestPostServiceRecordViewIsAtomicIncrement(t *testing.T) {
	svc, gdb := newTestPostService(t)

	post, err := svc.Create(PostInput{Content: "# Views", Slug: "views"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	createdUpdatedAt := post.UpdatedAt

	for i := 0; i < 3; i++ {
		if err := svc.RecordView(post.ID); err != nil {
			t.Fatalf("record view %d: %v", i, err)
		}
	}

	var stored db.Post
	if err := gdb.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.ViewCount != 3 {
		t.Errorf("expected view count 3, got %d", stored.ViewCount)
	}
	if stored.LastViewedAt == nil {
		t.Error("expected last_viewed_at to be set")
	}
	if !stored.UpdatedAt.Equal(createdUpdatedAt) {
		t.Error("recording a view must not touch updated_at")
	}
}

func TestPostServiceBySlugAndTokenIndistinguishable(t *testing.T) {
	svc, _ := newTestPostService(t)

	if _, err := svc.Create(PostInput{Content: "# Secret", Slug: "exists"}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	_, wrongToken := svc.BySlugAndToken("exists", "not-the-token")
	_, missingSlug := svc.BySlugAndToken("missing", "whatever")

	if !errors.Is(wrongToken, ErrPostNotFound) || !errors.Is(missingSlug, ErrPostNotFound) {
		t.Fatalf("expected identical not-found errors, got %v and %v", wrongToken, missingSlug)
	}
}

func TestPostServiceUpdateRetainsFormatWhenOmitted(t *testing.T) {
	svc, gdb := newTestPostService(t)

	post, err := svc.Create(PostInput{
		Content: "<h1>Old</h1>",
		Slug:    "keep-format",
		Format:  render.FormatHTML,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Update(post, "<h1>New title</h1><p>new body</p>", ""); err != nil {
		t.Fatalf("update post: %v", err)
	}

	var stored db.Post
	if err := gdb.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.Format != render.FormatHTML {
		t.Errorf("expected format retained as html, got %q", stored.Format)
	}
	if stored.Title != "New title" {
		t.Errorf("expected title recomputed with retained format, got %q", stored.Title)
	}
	if stored.Content != "<h1>New title</h1><p>new body</p>" {
		t.Errorf("unexpected content %q", stored.Content)
	}
}

func TestPostServiceUpdateCanSwitchFormat(t *testing.T) {
	svc, gdb := newTestPostService(t)

	post, err := svc.Create(PostInput{Content: "# Md", Slug: "switch"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Update(post, "<h1>Now html</h1>", render.FormatHTML); err != nil {
		t.Fatalf("update post: %v", err)
	}

	var stored db.Post
	if err := gdb.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.Format != render.FormatHTML {
		t.Errorf("expected format html, got %q", stored.Format)
	}
	if stored.Title != "Now html" {
		t.Errorf("expected title from h1, got %q", stored.Title)
	}
}

func TestPostServiceClaimIsOneWay(t *testing.T) {
	svc, gdb := newTestPostService(t)

	owner := db.User{Name: "Owner", Email: "owner@example.com", Password: "hashed"}
	other := db.User{Name: "Other", Email: "other@example.com", Password: "hashed"}
	if err := gdb.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if err := gdb.Create(&other).Error; err != nil {
		t.Fatalf("create other: %v", err)
	}

	post, err := svc.Create(PostInput{Content: "# Claim me", Slug: "claim-me"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Claim(post, owner.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	reloaded, err := svc.BySlug("claim-me")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := svc.Claim(reloaded, other.ID); err != nil {
		t.Fatalf("second claim: %v", err)
	}

	var stored db.Post
	if err := gdb.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.AuthorID == nil || *stored.AuthorID != owner.ID {
		t.Fatalf("expected author to stay %d, got %v", owner.ID, stored.AuthorID)
	}
}
