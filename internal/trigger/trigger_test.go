package trigger

import (
	"errors"
	"strings"
	"testing"

	"github.com/smysle/fbdl-go/internal/apperr"
)

func TestTrigger(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		filename string
		wantErr  bool
	}{
		{"空链接", "", "a.mp4", true},
		{"非法链接", "not a url", "a.mp4", true},
		{"非 http 协议", "ftp://cdn.example.com/a.mp4", "a.mp4", true},
		{"合法链接", "https://cdn.example.com/a.mp4", "a_high.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Trigger(tt.url, tt.filename)
			if tt.wantErr {
				if action != nil {
					t.Error("出错时不应该产生下载动作")
				}
				if !errors.Is(err, apperr.ErrNoValidURL) {
					t.Errorf("应该返回 NoValidUrl，实际是 %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Trigger() error = %v", err)
			}
			if action.URL != tt.url || action.Filename != tt.filename {
				t.Errorf("Action = %+v", action)
			}
			if action.Target != "_blank" || action.Status != "started" {
				t.Errorf("Action 应该在新窗口打开且状态为 started: %+v", action)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		quality string
		want    string
	}{
		{"普通标题", "My Video", "high", "My_Video_high.mp4"},
		{"空标题", "", "low", "video_low.mp4"},
		{"特殊字符", "a/b:c?d.e-f", "low", "a_b_c_d.e-f_low.mp4"},
		{"中文", "猫", "high", "__high.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.title, tt.quality); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCleanName_Truncates(t *testing.T) {
	got := CleanName(strings.Repeat("x", 150))
	if len(got) != 100 {
		t.Errorf("长度 = %d, want 100", len(got))
	}
}
