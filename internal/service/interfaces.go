package service

import (
	"context"
	"time"

	"github.com/smysle/fbdl-go/internal/database/models"
	"github.com/smysle/fbdl-go/internal/resolver"
)

// Resolver 解析接口
type Resolver interface {
	Resolve(ctx context.Context, target string) (*resolver.Resolution, error)
	ResolveBatch(ctx context.Context, targets []string, fn resolver.BatchFunc) (int, error)
}

// HistoryStore 下载历史存储
type HistoryStore interface {
	Insert(ctx context.Context, record *models.DownloadRecord) (*models.DownloadRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.DownloadRecord, error)
	ClearAll(ctx context.Context) error
}

// AttemptLogger 解析请求日志，写入失败不影响主流程
type AttemptLogger interface {
	LogDownload(ctx context.Context, url, userAgent string) error
}

// StatsSource 统计数据来源
type StatsSource interface {
	CountVisitsSince(ctx context.Context, since time.Time) (int64, error)
	CountDownloadLogsSince(ctx context.Context, since time.Time) (int64, error)
}

// DownloadCounter 下载历史计数
type DownloadCounter interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
