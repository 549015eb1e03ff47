package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/smysle/fbdl-go/pkg/utils"
)

type fakeStats struct {
	calls int
	err   error
}

func (f *fakeStats) CountVisitsSince(ctx context.Context, since time.Time) (int64, error) {
	f.calls++
	if since.IsZero() {
		return 100, f.err
	}
	return 10, f.err
}

func (f *fakeStats) CountDownloadLogsSince(ctx context.Context, since time.Time) (int64, error) {
	f.calls++
	if since.IsZero() {
		return 50, f.err
	}
	return 5, f.err
}

func (f *fakeStats) CountSince(ctx context.Context, since time.Time) (int64, error) {
	f.calls++
	return 42, f.err
}

func TestStatsService_Get(t *testing.T) {
	utils.CacheFlush()
	src := &fakeStats{}
	svc := NewStatsService(src, src)

	st, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st.WeeklyVisits != 10 || st.TotalVisits != 100 || st.TotalDownloads != 50 || st.SavedVideos != 42 {
		t.Errorf("统计不对: %+v", st)
	}

	calls := src.calls
	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != calls {
		t.Error("第二次应该命中缓存")
	}

	svc.Invalidate()
	svc.Get(context.Background())
	if src.calls == calls {
		t.Error("失效后应该重新统计")
	}
}

func TestStatsService_Error(t *testing.T) {
	utils.CacheFlush()
	src := &fakeStats{err: errors.New("db down")}
	svc := NewStatsService(src, src)

	if _, err := svc.Get(context.Background()); err == nil {
		t.Error("出错时应该返回错误")
	}
}

func TestStatsService_Card(t *testing.T) {
	utils.CacheFlush()
	src := &fakeStats{}
	svc := NewStatsService(src, src)

	data, err := svc.Card(context.Background(), "FB Video Grabber", "UTC")
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("输出不是 PNG: %v", err)
	}
}
