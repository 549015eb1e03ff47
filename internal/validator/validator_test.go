package validator

import (
	"errors"
	"testing"

	"github.com/smysle/fbdl-go/internal/apperr"
)

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"https 链接", "https://www.facebook.com/watch/?v=123", true},
		{"http 链接", "http://example.com/video.mp4", true},
		{"大写 scheme", "HTTPS://example.com", true},
		{"空字符串", "", false},
		{"纯文本", "not a url", false},
		{"ftp 协议", "ftp://example.com/file", false},
		{"javascript 协议", "javascript:alert(1)", false},
		{"缺少主机", "http://", false},
		{"相对路径", "/watch?v=1", false},
		{"非法转义", "https://exa mple.com/%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.input); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsFacebookVideoURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"watch", "https://www.facebook.com/watch/?v=123", true},
		{"watch 带参数", "https://www.facebook.com/watch/?v=123&ref=sharing", true},
		{"video.php", "https://facebook.com/video.php?v=987654321", true},
		{"reel", "https://www.facebook.com/reel/1234567890", true},
		{"stories", "https://m.facebook.com/stories/1234567890/", true},
		{"share v", "https://www.facebook.com/share/v/1AbCdEfG/", true},
		{"share r", "https://www.facebook.com/share/r/1AbCdEfG/", true},
		{"用户视频", "https://www.facebook.com/some.page/videos/1234567890/", true},
		{"用户帖子", "https://www.facebook.com/someuser/posts/pfbid0abc", true},
		{"小组帖子", "https://www.facebook.com/groups/123456/permalink/7890/", true},
		{"fb.com 短域名", "https://fb.com/watch/?v=42", true},
		{"直播", "https://www.facebook.com/watch/live/?v=55", true},
		{"其他站点", "https://www.youtube.com/watch?v=123", false},
		{"Facebook 首页", "https://www.facebook.com/", false},
		{"纯文本", "not a url", false},
		{"空字符串", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFacebookVideoURL(tt.input); got != tt.want {
				t.Errorf("IsFacebookVideoURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		requireFacebook bool
		wantErr         bool
	}{
		{"空输入", "   ", false, true},
		{"非法链接", "not a url", false, true},
		{"普通链接不要求 Facebook", "https://example.com/v", false, false},
		{"普通链接要求 Facebook", "https://example.com/v", true, true},
		{"Facebook 链接", " https://www.facebook.com/reel/1 ", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input, tt.requireFacebook)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("错误类别应该是 ValidationError，实际是 %v", apperr.KindOf(err))
			}
		})
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://www.facebook.com/watch/?v=1"); got != "www.facebook.com" {
		t.Errorf("Hostname() = %q", got)
	}
	if got := Hostname("::bad"); got != "" {
		t.Errorf("Hostname() = %q, want empty", got)
	}
}
