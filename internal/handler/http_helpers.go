package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondHTMLError 输出原始 HTML 错误页（如 <h1>Post not found</h1>）。
func respondHTMLError(c *gin.Context, status int, heading string) {
	body := fmt.Sprintf("<h1>%s</h1>", heading)
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// formatDate 按 en-US 长日期格式化时间戳。
func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func editURL(slug, token string) string {
	return fmt.Sprintf("/%s/edit/%s", slug, token)
}
