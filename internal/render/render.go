package render

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// 帖子内容的两种解释方式。
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ValidFormat 判断给定的 format 取值是否受支持。
func ValidFormat(format string) bool {
	return format == FormatMarkdown || format == FormatHTML
}

const descriptionLimit = 160

var (
	markdownTitlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	htmlTitlePattern     = regexp.MustCompile(`(?i)<h1[^>]*>(.*?)</h1>`)
)

// Renderer 持有只读的 Markdown 引擎配置，进程启动时构建一次，
// 之后可被任意数量的并发请求安全复用。
type Renderer struct {
	md    goldmark.Markdown
	strip *bluemonday.Policy
}

// New 构建渲染器：自动链接、排版替换、按语言标注高亮代码块，
// 禁止 Markdown 中的原始 HTML 透传，不把单个换行转成硬换行。
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Renderer{
		md:    md,
		strip: bluemonday.StrictPolicy(),
	}
}

// Render 把存储的内容转换为展示用 HTML。
// html 格式原样透传，作者的原始 HTML 被完全信任；
// markdown 格式经 goldmark 渲染，标题自动获得锚点 ID。
func (r *Renderer) Render(content, format string) (template.HTML, error) {
	if format == FormatHTML {
		return template.HTML(content), nil
	}

	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := r.md.Convert([]byte(content), &buf, parser.WithContext(ctx)); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Title 从原始内容推导标题：markdown 取第一个一级标题，
// html 取第一个 <h1> 的文本（剥离内部标签），都取不到时回退为 slug。
func (r *Renderer) Title(content, slug, format string) string {
	if format == FormatHTML {
		if m := htmlTitlePattern.FindStringSubmatch(content); m != nil {
			text := html.UnescapeString(r.strip.Sanitize(m[1]))
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				return trimmed
			}
		}
		return slug
	}

	if m := markdownTitlePattern.FindStringSubmatch(content); m != nil {
		if trimmed := strings.TrimSpace(m[1]); trimmed != "" {
			return trimmed
		}
	}
	return slug
}

// Description 取正文中第一个非空、且不以 # 开头的行，截断到 160 个字符；
// 找不到时回退为帖子标题。仅对 markdown 帖子有意义。
func (r *Renderer) Description(content, title string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		runes := []rune(trimmed)
		if len(runes) > descriptionLimit {
			return string(runes[:descriptionLimit])
		}
		return trimmed
	}
	return title
}
