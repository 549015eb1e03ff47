package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/smysle/fbdl-go/internal/service"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *service.VideoResult
		contains []string
	}{
		{
			name:     "两种画质",
			result:   &service.VideoResult{Title: "Cat <video>", Low: "l", High: "h"},
			contains: []string{"Cat &lt;video&gt;", "Choose a quality"},
		},
		{
			name:     "只有一种画质",
			result:   &service.VideoResult{Title: "Dog", High: "h", Creator: "Page"},
			contains: []string{"Dog", "👤 Page", "Only one quality"},
		},
		{
			name:     "长标题截断",
			result:   &service.VideoResult{Title: strings.Repeat("a", 80), Low: "l", High: "h"},
			contains: []string{strings.Repeat("a", maxTitleLen) + "..."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatResult(tt.result)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatResult() = %q, 缺少 %q", got, want)
				}
			}
		})
	}
}

func TestFormatFailure(t *testing.T) {
	got := formatFailure(service.Outcome{Error: "Video is private", SupportURL: "https://t.me/x"})
	if !strings.Contains(got, "Unable to process URL. Video is private") || !strings.Contains(got, "Contact support") {
		t.Errorf("formatFailure() = %q", got)
	}
	got = formatFailure(service.Outcome{Error: "network error"})
	if strings.Contains(got, "Contact support") {
		t.Error("没有客服链接时不应该提示")
	}
}

func TestFormatNotices(t *testing.T) {
	got := formatNotices([]service.Notice{
		{Title: "🎉 Download Ready!", Variant: service.VariantDefault},
		{Title: "DB Save Error 💾", Description: "disk full", Variant: service.VariantDestructive},
	})
	if got != "⚠️ DB Save Error 💾: disk full" {
		t.Errorf("formatNotices() = %q", got)
	}
}

func TestFormatBatch(t *testing.T) {
	out := service.BatchOutcome{
		Succeeded: 1,
		Total:     2,
		Items: []service.Outcome{
			{Result: &service.VideoResult{Title: "One"}},
			{Error: "network error"},
		},
	}
	got := formatBatch(out, []string{"https://a", "https://b"})
	for _, want := range []string{"1 out of 2", "1. ✅ One", "2. ❌ https://b", "network error"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatBatch() 缺少 %q:\n%s", want, got)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if got := formatHistory(nil, now); !strings.Contains(got, "No recent downloads") {
		t.Errorf("空列表 = %q", got)
	}

	got := formatHistory([]service.HistoryItem{
		{Title: "Cat", Source: "www.facebook.com", DownloadedAt: now.Add(-2 * time.Hour)},
	}, now)
	if !strings.Contains(got, "1. <b>Cat</b>") || !strings.Contains(got, "www.facebook.com · 2 hours ago") {
		t.Errorf("formatHistory() = %q", got)
	}
}

func TestFormatOwnerReport(t *testing.T) {
	got := formatOwnerReport(42, "alice", "https://fb.com/x", service.Outcome{Error: "boom", ErrorKind: "NetworkError"})
	for _, want := range []string{"<code>42</code> @alice", "https://fb.com/x", "boom (NetworkError)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatOwnerReport() 缺少 %q: %s", want, got)
		}
	}
}

func TestNonBlank(t *testing.T) {
	got := nonBlank([]string{"", " a ", "  ", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("nonBlank() = %v", got)
	}
}
