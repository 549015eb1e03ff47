// Package models 数据模型测试
package models

import "testing"

const placeholder = "https://img.example.com/placeholder.jpg"

func TestDownloadRecord_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    *string
		expected string
	}{
		{"有标题", strPtr("Cat video"), "Cat video"},
		{"空字符串", strPtr(""), "Untitled Video"},
		{"nil", nil, "Untitled Video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DownloadRecord{Title: tt.title}
			if got := d.DisplayTitle("Untitled Video"); got != tt.expected {
				t.Errorf("DisplayTitle() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDownloadRecord_ThumbnailOr(t *testing.T) {
	tests := []struct {
		name      string
		thumbnail *string
		expected  string
	}{
		{"合法链接", strPtr("https://cdn.example.com/t.jpg"), "https://cdn.example.com/t.jpg"},
		{"javascript 链接", strPtr("javascript:alert(1)"), placeholder},
		{"非链接", strPtr("thumbnail.jpg"), placeholder},
		{"nil", nil, placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DownloadRecord{Thumbnail: tt.thumbnail}
			if got := d.ThumbnailOr(placeholder); got != tt.expected {
				t.Errorf("ThumbnailOr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDownloadRecord_Quality(t *testing.T) {
	d := &DownloadRecord{HighQualityURL: strPtr("https://cdn.example.com/h.mp4")}
	if d.Low() != "" {
		t.Errorf("Low() = %q, want empty", d.Low())
	}
	if d.High() != "https://cdn.example.com/h.mp4" {
		t.Errorf("High() = %q", d.High())
	}
	if !d.HasQuality() {
		t.Error("HasQuality() 应该为 true")
	}
	if (&DownloadRecord{}).HasQuality() {
		t.Error("没有链接时 HasQuality() 应该为 false")
	}
}

func TestDownloadRecord_SourceHost(t *testing.T) {
	tests := []struct {
		name     string
		original string
		expected string
	}{
		{"正常链接", "https://www.facebook.com/watch/?v=1", "www.facebook.com"},
		{"空", "", "N/A"},
		{"无法解析", "::bad", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DownloadRecord{OriginalURL: tt.original}
			if got := d.SourceHost(); got != tt.expected {
				t.Errorf("SourceHost() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStrPtr(t *testing.T) {
	if StrPtr("") != nil {
		t.Error("StrPtr(\"\") 应该返回 nil")
	}
	if p := StrPtr("x"); p == nil || *p != "x" {
		t.Error("StrPtr(\"x\") 返回错误")
	}
}

func strPtr(s string) *string {
	return &s
}
