package keyboards

import (
	"testing"

	"github.com/smysle/fbdl-go/internal/service"
)

func TestQualityKeyboard(t *testing.T) {
	tests := []struct {
		name    string
		low     string
		high    string
		buttons int
	}{
		{"两种画质", "https://cdn.example.com/sd.mp4", "https://cdn.example.com/hd.mp4", 2},
		{"只有高清", "", "https://cdn.example.com/hd.mp4", 1},
		{"链接无效", "not a url", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := QualityKeyboard(tt.low, tt.high)
			if tt.buttons == 0 {
				if kb != nil {
					t.Error("没有可用链接时应该返回 nil")
				}
				return
			}
			if kb == nil || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != tt.buttons {
				t.Fatalf("按钮数量不对: %+v", kb)
			}
		})
	}
}

func TestSupportKeyboard(t *testing.T) {
	if SupportKeyboard("") != nil {
		t.Error("没有链接时应该返回 nil")
	}
	kb := SupportKeyboard("https://wa.me/1")
	if kb == nil || kb.InlineKeyboard[0][0].URL != "https://wa.me/1" {
		t.Errorf("SupportKeyboard() = %+v", kb)
	}
}

func TestHistoryKeyboard(t *testing.T) {
	var items []service.HistoryItem
	for i := 0; i < 8; i++ {
		items = append(items, service.HistoryItem{High: "https://cdn.example.com/hd.mp4", Downloadable: true})
	}
	kb := HistoryKeyboard(items)
	// 最多五条加一行操作按钮
	if len(kb.InlineKeyboard) != maxHistoryRows+1 {
		t.Errorf("行数 = %d, want %d", len(kb.InlineKeyboard), maxHistoryRows+1)
	}
	last := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	if len(last) != 2 {
		t.Errorf("最后一行应该是刷新和关闭: %+v", last)
	}
}

func TestHistoryKeyboard_SkipsNotDownloadable(t *testing.T) {
	items := []service.HistoryItem{
		{Title: "gone"},
		{Low: "https://cdn.example.com/sd.mp4", Downloadable: true},
	}
	kb := HistoryKeyboard(items)
	// 一条下载行加一行操作按钮
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("行数 = %d, want 2", len(kb.InlineKeyboard))
	}
	if kb.InlineKeyboard[0][0].URL != "https://cdn.example.com/sd.mp4" {
		t.Errorf("第一行应该是可下载的记录: %+v", kb.InlineKeyboard[0])
	}
}
