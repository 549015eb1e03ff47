package service

import (
	"context"
	"time"

	"github.com/smysle/fbdl-go/pkg/imggen"
	"github.com/smysle/fbdl-go/pkg/utils"
)

const statsCacheKey = "admin:stats"

// Stats 后台统计
type Stats struct {
	WeeklyVisits     int64     `json:"weekly_visits"`
	MonthlyVisits    int64     `json:"monthly_visits"`
	TotalVisits      int64     `json:"total_visits"`
	WeeklyDownloads  int64     `json:"weekly_downloads"`
	MonthlyDownloads int64     `json:"monthly_downloads"`
	TotalDownloads   int64     `json:"total_downloads"`
	SavedVideos      int64     `json:"saved_videos"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// StatsService 统计服务，结果缓存一分钟
type StatsService struct {
	logs    StatsSource
	history DownloadCounter
	ttl     time.Duration
	now     func() time.Time
}

// NewStatsService 创建统计服务
func NewStatsService(logs StatsSource, history DownloadCounter) *StatsService {
	return &StatsService{logs: logs, history: history, ttl: time.Minute, now: time.Now}
}

// Get 获取统计数据
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	v, err := utils.CacheGetOrSet(statsCacheKey, s.ttl, func() (interface{}, error) {
		return s.collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stats), nil
}

// Invalidate 清除缓存
func (s *StatsService) Invalidate() {
	utils.CacheDelete(statsCacheKey)
}

func (s *StatsService) collect(ctx context.Context) (*Stats, error) {
	now := s.now()
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, -1, 0)
	var zero time.Time

	st := &Stats{GeneratedAt: now}
	var err error

	if st.WeeklyVisits, err = s.logs.CountVisitsSince(ctx, week); err != nil {
		return nil, err
	}
	if st.MonthlyVisits, err = s.logs.CountVisitsSince(ctx, month); err != nil {
		return nil, err
	}
	if st.TotalVisits, err = s.logs.CountVisitsSince(ctx, zero); err != nil {
		return nil, err
	}
	if st.WeeklyDownloads, err = s.logs.CountDownloadLogsSince(ctx, week); err != nil {
		return nil, err
	}
	if st.MonthlyDownloads, err = s.logs.CountDownloadLogsSince(ctx, month); err != nil {
		return nil, err
	}
	if st.TotalDownloads, err = s.logs.CountDownloadLogsSince(ctx, zero); err != nil {
		return nil, err
	}
	if st.SavedVideos, err = s.history.CountSince(ctx, zero); err != nil {
		return nil, err
	}
	return st, nil
}

// Card 生成统计卡片图片
func (s *StatsService) Card(ctx context.Context, appName, tz string) ([]byte, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return imggen.GenerateStatsCard(imggen.StatsCard{
		Title:    appName,
		Subtitle: "Admin Dashboard",
		Metrics: []imggen.Metric{
			{Label: "Visits this week", Value: utils.FormatCount(st.WeeklyVisits)},
			{Label: "Visits this month", Value: utils.FormatCount(st.MonthlyVisits)},
			{Label: "Total visits", Value: utils.FormatCount(st.TotalVisits)},
			{Label: "Downloads this week", Value: utils.FormatCount(st.WeeklyDownloads)},
			{Label: "Downloads this month", Value: utils.FormatCount(st.MonthlyDownloads)},
			{Label: "Total downloads", Value: utils.FormatCount(st.TotalDownloads)},
			{Label: "Saved videos", Value: utils.FormatCount(st.SavedVideos)},
		},
		GeneratedAt: st.GeneratedAt.In(utils.Location(tz)),
	})
}
