package service

import (
	"testing"
	"time"

	"github.com/smysle/fbdl-go/internal/database/models"
)

func TestSession_Inputs(t *testing.T) {
	s := NewSession(10)
	if got := s.Inputs(); len(got) != 1 || got[0] != "" {
		t.Fatalf("初始应该有一个空输入框: %v", got)
	}

	s.AddInput("a")
	s.AddInput("b")
	if got := s.Inputs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("AddInput 结果不对: %v", got)
	}

	if !s.UpdateInput(1, "c") || s.Inputs()[1] != "c" {
		t.Error("UpdateInput 失败")
	}
	if s.UpdateInput(5, "x") {
		t.Error("越界时应该返回 false")
	}

	s.RemoveInput(0)
	s.RemoveInput(0)
	if got := s.Inputs(); len(got) != 1 || got[0] != "" {
		t.Errorf("至少保留一个输入框: %v", got)
	}
}

func TestSession_RecentCapped(t *testing.T) {
	s := NewSession(2)
	for i := int64(1); i <= 3; i++ {
		s.pushRecent(models.DownloadRecord{ID: i})
	}
	recent := s.Recent()
	if len(recent) != 2 || recent[0].ID != 3 || recent[1].ID != 2 {
		t.Errorf("最近列表应该保留最新两条: %+v", recent)
	}
}

func TestSession_Generation(t *testing.T) {
	s := NewSession(10)
	g1 := s.begin()
	g2 := s.begin()

	if s.finish(g1, &VideoResult{Title: "old"}, "") {
		t.Error("旧请求不应该生效")
	}
	if !s.View().Pending {
		t.Error("还有请求进行中")
	}
	if !s.finish(g2, &VideoResult{Title: "new"}, "") {
		t.Error("最新请求应该生效")
	}
	view := s.View()
	if view.Pending || view.Result == nil || view.Result.Title != "new" {
		t.Errorf("状态不对: %+v", view)
	}

	g3 := s.begin()
	s.fail("bad input")
	if s.finish(g3, &VideoResult{Title: "late"}, "") {
		t.Error("校验失败后进行中的请求应该失效")
	}
	if s.View().Error != "bad input" {
		t.Errorf("Error = %q", s.View().Error)
	}
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore(time.Minute, 10)

	a := st.Get("")
	if a.ID == "" {
		t.Fatal("应该生成会话 ID")
	}
	if st.Get(a.ID) != a {
		t.Error("同一个 ID 应该返回同一个会话")
	}
	st.Get("tg:1")
	if st.Count() != 2 {
		t.Errorf("Count() = %d, want 2", st.Count())
	}

	seen := 0
	st.Each(func(*Session) { seen++ })
	if seen != 2 {
		t.Errorf("Each 遍历了 %d 个", seen)
	}
}
