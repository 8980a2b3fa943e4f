package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

var anchorCollapsePattern = regexp.MustCompile(`[\s\W-]+`)

// anchorize 把标题文本转成锚点 ID：小写、去首尾空白、
// 把空白与非单词字符的连续段收缩成单个连字符，再去掉首尾连字符。
func anchorize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = anchorCollapsePattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// headingIDs 在单次渲染范围内为标题生成去重后的锚点 ID。
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() parser.IDs {
	return &headingIDs{used: map[string]bool{}}
}

func (ids *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := anchorize(string(value))
	if base == "" {
		base = "heading"
	}

	anchor := base
	for i := 1; ids.used[anchor]; i++ {
		anchor = fmt.Sprintf("%s-%d", base, i)
	}
	ids.used[anchor] = true
	return []byte(anchor)
}

func (ids *headingIDs) Put(value []byte) {
	ids.used[string(value)] = true
}
