// Package utils Bot 工具函数
package utils

import (
	"regexp"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/smysle/fbdl-go/pkg/logger"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// ExtractURLs 取出消息中的所有链接，去掉末尾标点并去重
func ExtractURLs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?)]}'")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// DeleteAfter 定时删除消息
func DeleteAfter(b *tele.Bot, msg *tele.Message, seconds int) {
	if msg == nil || b == nil {
		return
	}
	go func() {
		time.Sleep(time.Duration(seconds) * time.Second)
		if err := b.Delete(msg); err != nil {
			logger.Debug().Err(err).Msg("删除消息失败")
		}
	}()
}

// CallbackAction 解析回调数据，telebot 生成的格式是 "\f{unique}|{data}"
func CallbackAction(data string) (string, []string) {
	data = strings.TrimPrefix(data, "\f")
	parts := strings.Split(data, "|")
	return parts[0], parts[1:]
}
