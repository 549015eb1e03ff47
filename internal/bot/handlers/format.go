package handlers

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/pkg/utils"
)

const maxTitleLen = 60

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleLen {
		return s
	}
	return string(r[:maxTitleLen]) + "..."
}

// formatResult 解析成功的消息
func formatResult(r *service.VideoResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 <b>%s</b>\n", html.EscapeString(shorten(r.Title)))
	if r.Creator != "" {
		fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(r.Creator))
	}
	if r.Low == "" || r.High == "" {
		b.WriteString("\nOnly one quality is available for this video.")
	} else {
		b.WriteString("\nChoose a quality below to download.")
	}
	return b.String()
}

// formatFailure 解析失败的消息
func formatFailure(out service.Outcome) string {
	text := fmt.Sprintf("❌ <b>Download Failed</b>\n\nUnable to process URL. %s", html.EscapeString(out.Error))
	if out.SupportURL != "" {
		text += "\n\nNeed help? Contact support below."
	}
	return text
}

// formatNotices 附加的提示，例如写入历史失败
func formatNotices(notices []service.Notice) string {
	var lines []string
	for _, n := range notices {
		if n.Variant != service.VariantDestructive {
			continue
		}
		lines = append(lines, fmt.Sprintf("⚠️ %s: %s", html.EscapeString(n.Title), html.EscapeString(n.Description)))
	}
	return strings.Join(lines, "\n")
}

// formatBatch 批量解析汇总
func formatBatch(out service.BatchOutcome, urls []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 <b>Batch Download Complete!</b>\nSuccessfully processed %d out of %d videos.\n", out.Succeeded, out.Total)
	for i, item := range out.Items {
		if item.OK() {
			fmt.Fprintf(&b, "\n%d. ✅ %s", i+1, html.EscapeString(shorten(item.Result.Title)))
			continue
		}
		target := ""
		if i < len(urls) {
			target = urls[i]
		}
		fmt.Fprintf(&b, "\n%d. ❌ %s\n   <i>%s</i>", i+1, html.EscapeString(target), html.EscapeString(item.Error))
	}
	return b.String()
}

// formatHistory 最近下载列表
func formatHistory(items []service.HistoryItem, now time.Time) string {
	if len(items) == 0 {
		return "📭 No recent downloads yet. Send me a Facebook video link to get started."
	}
	var b strings.Builder
	b.WriteString("🕘 <b>Recent downloads</b>\n")
	for i, it := range items {
		fmt.Fprintf(&b, "\n%d. <b>%s</b>\n   %s · %s",
			i+1,
			html.EscapeString(shorten(it.Title)),
			html.EscapeString(it.Source),
			utils.TimeAgo(it.DownloadedAt, now),
		)
	}
	return b.String()
}

// formatOwnerReport 转发给 Owner 的失败报告
func formatOwnerReport(userID int64, username, target string, out service.Outcome) string {
	who := fmt.Sprintf("<code>%d</code>", userID)
	if username != "" {
		who += " @" + html.EscapeString(username)
	}
	return fmt.Sprintf("🛟 <b>Download failed</b>\nUser: %s\nURL: %s\nError: %s (%s)",
		who, html.EscapeString(target), html.EscapeString(out.Error), html.EscapeString(out.ErrorKind))
}
