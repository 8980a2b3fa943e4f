package service

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug 校验帖子地址：只允许小写字母、数字与连字符，至少一个字符。
// 可用性检查与发布前校验共用同一条规则。
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
