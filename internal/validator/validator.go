// Package validator 链接校验
package validator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/smysle/fbdl-go/internal/apperr"
)

// facebookVideoPattern 常见的 Facebook 视频链接形式，只做初筛，最终以解析接口为准
var facebookVideoPattern = regexp.MustCompile(`(?i)^(https?://)?(www\.|m\.|web\.|mbasic\.)?(facebook|fb)\.com/` +
	`(?:watch/?\?v=|video\.php\?v=|photo\.php\?v=|story\.php\?story_fbid=|share/(?:v|r|s)/|reel/|stories/|` +
	`[\w.-]+/(?:videos|posts|photos|reels|stories|live|watch)/[\w.-]+|groups/[\w.-]+/permalink/|` +
	`[\w.-]+/videos/pcb\.\d+/|[\w.-]+/videos/vb\.\d+/|watch/live/\?v=)` +
	`[\w.-]*/?([?&][\w=&%.-]*)?$`)

// IsValidHTTPURL 是否为 http/https 绝对链接
func IsValidHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsFacebookVideoURL 是否匹配 Facebook 视频链接
func IsFacebookVideoURL(s string) bool {
	s = strings.TrimSpace(s)
	if !IsValidHTTPURL(s) {
		return false
	}
	return facebookVideoPattern.MatchString(s)
}

// Validate 校验用户输入
func Validate(s string, requireFacebook bool) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return apperr.Validation("Please paste a Facebook video URL.")
	}
	if !IsValidHTTPURL(s) {
		return apperr.Validation("The provided text is not a valid http(s) URL.")
	}
	if requireFacebook && !IsFacebookVideoURL(s) {
		return apperr.Validation("The provided URL does not seem to be a valid Facebook video link.")
	}
	return nil
}

// Hostname 返回链接的主机名，无法解析时返回空串
func Hostname(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
