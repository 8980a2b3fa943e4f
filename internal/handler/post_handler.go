package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pastelog/internal/render"
	"github.com/pastelog/internal/service"
)

type publishRequest struct {
	Content string `json:"content"`
	Slug    string `json:"slug"`
	Format  string `json:"format"`
}

type previewRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

type updateRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// CheckSlug 检查 slug 是否可用，不做任何写入。
func (a *API) CheckSlug(c *gin.Context) {
	slug := c.Param("slug")

	if !service.ValidSlug(slug) {
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"message":   "Slug must contain only lowercase letters, numbers, and hyphens",
		})
		return
	}

	taken, err := a.posts.SlugTaken(slug)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"available": false,
			"message":   "Error checking slug availability",
		})
		return
	}

	if taken {
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"message":   "This slug is already taken",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available": true,
		"message":   "This slug is available",
	})
}

// PreviewPost 只渲染不落库：html 原样返回，其余按 markdown 渲染。
func (a *API) PreviewPost(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		respondError(c, http.StatusBadRequest, "Content is required")
		return
	}

	html, err := a.renderer.Render(req.Content, req.Format)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to preview markdown")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"html":    html,
	})
}

// PublishPost 创建帖子并把编辑令牌一次性返回给客户端。
func (a *API) PublishPost(c *gin.Context) {
	var req publishRequest
	if !bindJSON(c, &req, "Content and slug are required") {
		return
	}

	format := req.Format
	if format == "" {
		format = render.FormatMarkdown
	}
	if !render.ValidFormat(format) {
		respondError(c, http.StatusBadRequest, "Invalid format. Must be 'markdown' or 'html'")
		return
	}

	if req.Content == "" || req.Slug == "" {
		respondError(c, http.StatusBadRequest, "Content and slug are required")
		return
	}

	if !service.ValidSlug(req.Slug) {
		respondError(c, http.StatusBadRequest, "Slug must contain only lowercase letters, numbers, and hyphens")
		return
	}

	var authorID *uint
	if user := a.currentUser(c); user != nil {
		authorID = &user.ID
	}

	post, err := a.posts.Create(service.PostInput{
		Content:  req.Content,
		Slug:     req.Slug,
		Format:   format,
		AuthorID: authorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugTaken):
			respondError(c, http.StatusConflict, "This slug is already taken. Please choose another one.")
		case errors.Is(err, service.ErrInvalidSlug):
			respondError(c, http.StatusBadRequest, "Slug must contain only lowercase letters, numbers, and hyphens")
		case errors.Is(err, service.ErrInvalidFormat):
			respondError(c, http.StatusBadRequest, "Invalid format. Must be 'markdown' or 'html'")
		default:
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "Failed to create post. Please try again.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"post_id":    post.ID,
		"slug":       post.Slug,
		"public_url": "/" + post.Slug,
		"edit_url":   editURL(post.Slug, post.EditToken),
		"edit_token": post.EditToken,
	})
}

// ShowSuccess 渲染发布成功页，汇报帖子是否已被认领。
// 缺少 slug 或 token 参数时直接回首页。
func (a *API) ShowSuccess(c *gin.Context) {
	slug := c.Query("slug")
	token := c.Query("token")
	if slug == "" || token == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	claimed := false
	if post, err := a.posts.BySlugAndToken(slug, token); err == nil {
		claimed = post.AuthorID != nil
	} else if !errors.Is(err, service.ErrPostNotFound) {
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error loading page")
		return
	}

	var user gin.H
	if u := a.currentUser(c); u != nil {
		user = gin.H{"id": u.ID, "name": u.Name, "email": u.Email}
	}

	c.HTML(http.StatusOK, "success.html", gin.H{
		"slug":       slug,
		"edit_token": token,
		"edit_url":   editURL(slug, token),
		"public_url": strings.TrimRight(a.baseURL, "/") + "/" + slug,
		"claim_url":  fmt.Sprintf("/claim/%s?token=%s", slug, url.QueryEscape(token)),
		"is_claimed": claimed,
		"user":       user,
	})
}

// ShowPost 展示帖子。每次成功加载都无条件加一次浏览计数；
// html 格式的帖子把存储内容原样作为页面主体返回。
func (a *API) ShowPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := a.posts.BySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondHTMLError(c, http.StatusNotFound, "Post not found")
			return
		}
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error loading post")
		return
	}

	if err := a.posts.RecordView(post.ID); err != nil {
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error loading post")
		return
	}
	post.ViewCount++

	if post.Format == render.FormatHTML {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(post.Content))
		return
	}

	html, err := a.renderer.Render(post.Content, post.Format)
	if err != nil {
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error loading post")
		return
	}

	var author gin.H
	if post.AuthorID != nil && post.Author != nil {
		author = gin.H{"name": post.Author.Name}
	}

	c.HTML(http.StatusOK, "post.html", gin.H{
		"title":       post.Title,
		"description": a.renderer.Description(post.Content, post.Title),
		"content":     html,
		"view_count":  post.ViewCount,
		"created_at":  formatDate(post.CreatedAt),
		"updated_at":  formatDate(post.UpdatedAt),
		"author":      author,
	})
}

// ShowEditPage 按 slug 加令牌取帖并返回编辑所需的完整数据。
// slug 不存在与令牌不对返回同一个 404，不泄露哪一半凭证错了。
func (a *API) ShowEditPage(c *gin.Context) {
	slug := c.Param("slug")
	token := c.Param("token")

	post, err := a.posts.BySlugAndToken(slug, token)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondHTMLError(c, http.StatusNotFound, "Invalid edit link")
			return
		}
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error loading edit page")
		return
	}

	format := post.Format
	if format == "" {
		format = render.FormatMarkdown
	}

	var author gin.H
	if post.AuthorID != nil && post.Author != nil {
		author = gin.H{"name": post.Author.Name, "email": post.Author.Email}
	}

	// 会话身份只用于决定编辑页的呈现状态，不参与编辑授权
	var user gin.H
	if u := a.currentUser(c); u != nil {
		user = gin.H{"id": u.ID, "name": u.Name, "email": u.Email}
	}

	c.JSON(http.StatusOK, gin.H{
		"post": gin.H{
			"id":         post.ID,
			"slug":       post.Slug,
			"title":      post.Title,
			"content":    post.Content,
			"format":     format,
			"view_count": post.ViewCount,
			"created_at": post.CreatedAt,
			"updated_at": post.UpdatedAt,
		},
		"user":       user,
		"author":     author,
		"edit_token": token,
	})
}

// UpdatePost 以同样的令牌门禁更新内容，format 省略时沿用原格式。
func (a *API) UpdatePost(c *gin.Context) {
	slug := c.Param("slug")
	token := c.Param("token")

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		respondError(c, http.StatusBadRequest, "Content is required")
		return
	}

	post, err := a.posts.BySlugAndToken(slug, token)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "Invalid edit link")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to update post")
		return
	}

	if err := a.posts.Update(post, req.Content, req.Format); err != nil {
		if errors.Is(err, service.ErrInvalidFormat) {
			respondError(c, http.StatusBadRequest, "Invalid format. Must be 'markdown' or 'html'")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Post updated successfully",
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// ClaimPost 把帖子归属到当前登录用户。已认领的帖子直接跳编辑页；
// 未登录则写入 15 分钟的回跳 Cookie 并转去注册。
func (a *API) ClaimPost(c *gin.Context) {
	slug := c.Param("slug")
	token := strings.TrimSpace(c.Query("token"))

	if token == "" {
		respondHTMLError(c, http.StatusBadRequest, "Invalid claim link")
		return
	}

	post, err := a.posts.BySlugAndToken(slug, token)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondHTMLError(c, http.StatusNotFound, "Invalid claim link")
			return
		}
		c.Error(err)
		respondHTMLError(c, http.StatusInternalServerError, "Error claiming post")
		return
	}

	target := editURL(slug, token)

	if post.AuthorID != nil {
		c.Redirect(http.StatusFound, target)
		return
	}

	if user := a.currentUser(c); user != nil {
		if err := a.posts.Claim(post, user.ID); err != nil {
			c.Error(err)
			respondHTMLError(c, http.StatusInternalServerError, "Error claiming post")
			return
		}
		c.SetCookie(redirectCookieName, "", -1, "/", "", false, true)
		c.Redirect(http.StatusFound, target)
		return
	}

	returnURL := fmt.Sprintf("/claim/%s?token=%s", slug, url.QueryEscape(token))
	c.SetCookie(redirectCookieName, returnURL, redirectCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, "/register")
}
