package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Wrap(KindNetwork, "network error", errors.New("dial tcp: refused")))

	if !errors.Is(err, ErrNetwork) {
		t.Error("包装后的 NetworkError 应该匹配 ErrNetwork")
	}
	if errors.Is(err, ErrInvalidResponse) {
		t.Error("NetworkError 不应该匹配 ErrInvalidResponse")
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("KindOf() = %v", KindOf(err))
	}
	if MessageOf(err) != "network error" {
		t.Errorf("MessageOf() = %q", MessageOf(err))
	}
}

func TestRequestFailed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   string
	}{
		{"带上游消息", 404, "Video not found", "Video not found"},
		{"无上游消息", 503, "", "request failed with status 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequestFailed(tt.status, tt.msg)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestKindOf_Plain(t *testing.T) {
	if KindOf(errors.New("boom")) != KindUnknown {
		t.Error("普通错误应该是 KindUnknown")
	}
	if KindNoValidURL.String() != "NoValidUrl" {
		t.Errorf("String() = %s", KindNoValidURL.String())
	}
}
