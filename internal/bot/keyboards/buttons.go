// Package keyboards 键盘按钮
package keyboards

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/internal/validator"
)

// 回调动作
const (
	ActionHistory = "history"
	ActionClose   = "close"
)

// maxHistoryRows 历史键盘最多展示的条数，避免超过 Telegram 按钮上限
const maxHistoryRows = 5

// QualityKeyboard SD/HD 下载按钮，链接无效的画质不显示
func QualityKeyboard(low, high string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var btns []tele.Btn
	if validator.IsValidHTTPURL(low) {
		btns = append(btns, markup.URL("📥 SD", low))
	}
	if validator.IsValidHTTPURL(high) {
		btns = append(btns, markup.URL("🎬 HD", high))
	}
	if len(btns) == 0 {
		return nil
	}
	markup.Inline(markup.Row(btns...))
	return markup
}

// SupportKeyboard 联系客服按钮
func SupportKeyboard(link string) *tele.ReplyMarkup {
	if link == "" {
		return nil
	}
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL("💬 Contact support", link)))
	return markup
}

// HistoryKeyboard 最近下载列表，每条一行下载按钮
func HistoryKeyboard(items []service.HistoryItem) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row

	for i, it := range items {
		if i >= maxHistoryRows {
			break
		}
		if !it.Downloadable {
			continue
		}
		var btns []tele.Btn
		if validator.IsValidHTTPURL(it.Low) {
			btns = append(btns, markup.URL(fmt.Sprintf("%d · SD", i+1), it.Low))
		}
		if validator.IsValidHTTPURL(it.High) {
			btns = append(btns, markup.URL(fmt.Sprintf("%d · HD", i+1), it.High))
		}
		if len(btns) > 0 {
			rows = append(rows, markup.Row(btns...))
		}
	}

	rows = append(rows, markup.Row(
		markup.Data("🔄 Refresh", ActionHistory, "refresh"),
		markup.Data("❌ Close", ActionClose),
	))
	markup.Inline(rows...)
	return markup
}

// ClearConfirmKeyboard 清空历史确认
func ClearConfirmKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🗑️ Yes, clear all", ActionHistory, "clear"),
		markup.Data("Cancel", ActionClose),
	))
	return markup
}
