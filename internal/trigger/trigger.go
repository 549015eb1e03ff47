// Package trigger 浏览器下载动作
package trigger

import (
	"regexp"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/validator"
)

const maxNameLen = 100

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Action 交给浏览器执行的下载动作，服务端不接触文件内容
type Action struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Target   string `json:"target"`
	// Status 只会是 started，下载完成与否由浏览器负责
	Status string `json:"status"`
}

// Trigger 生成下载动作，链接为空或非法时返回 NoValidUrl
func Trigger(url, filename string) (*Action, error) {
	if url == "" || !validator.IsValidHTTPURL(url) {
		return nil, apperr.New(apperr.KindNoValidURL, "No valid URL found for this quality.")
	}
	if filename == "" {
		filename = "video.mp4"
	}
	return &Action{
		URL:      url,
		Filename: filename,
		Target:   "_blank",
		Status:   "started",
	}, nil
}

// CleanName 把标题转换为安全的文件名
func CleanName(title string) string {
	if title == "" {
		title = "video"
	}
	name := unsafeChars.ReplaceAllString(title, "_")
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

// FileName 生成 <标题>_<清晰度>.mp4
func FileName(title, quality string) string {
	return CleanName(title) + "_" + quality + ".mp4"
}
