package utils

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"没有链接", "hello there", nil},
		{"单个链接", "look https://www.facebook.com/watch/?v=1 please", []string{"https://www.facebook.com/watch/?v=1"}},
		{"末尾标点", "see https://fb.watch/abc.", []string{"https://fb.watch/abc"}},
		{"多个链接去重", "https://a.com/1 http://b.com/2 https://a.com/1", []string{"https://a.com/1", "http://b.com/2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURLs(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallbackAction(t *testing.T) {
	action, args := CallbackAction("\fhistory|refresh")
	if action != "history" || len(args) != 1 || args[0] != "refresh" {
		t.Errorf("CallbackAction() = %q %v", action, args)
	}
	action, args = CallbackAction("close")
	if action != "close" || len(args) != 0 {
		t.Errorf("CallbackAction() = %q %v", action, args)
	}
}
