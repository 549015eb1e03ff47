// Package repository 访问与下载日志仓库
package repository

import (
	"context"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/database/models"
)

// LogRepository 日志仓库
type LogRepository struct {
	db *gorm.DB
}

// NewLogRepository 创建日志仓库
func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// LogVisit 记录一次访问
func (r *LogRepository) LogVisit(ctx context.Context, userAgent, path string) error {
	entry := &models.VisitorLog{
		VisitedAt: time.Now(),
		UserAgent: models.StrPtr(truncate(userAgent, 500)),
		Path:      models.StrPtr(truncate(path, 255)),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.Wrap(apperr.KindStoreWrite, "failed to write visitor log", err)
	}
	return nil
}

// LogDownload 记录一次解析请求
func (r *LogRepository) LogDownload(ctx context.Context, url, userAgent string) error {
	entry := &models.DownloadLog{
		CreatedAt: time.Now(),
		URL:       models.StrPtr(url),
		UserAgent: models.StrPtr(truncate(userAgent, 500)),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.Wrap(apperr.KindStoreWrite, "failed to write download log", err)
	}
	return nil
}

// CountVisitsSince 统计访问数，since 为零值时统计全部
func (r *LogRepository) CountVisitsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.countSince(ctx, &models.VisitorLog{}, "visited_at", since)
}

// CountDownloadLogsSince 统计解析请求数
func (r *LogRepository) CountDownloadLogsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.countSince(ctx, &models.DownloadLog{}, "created_at", since)
}

func (r *LogRepository) countSince(ctx context.Context, model interface{}, column string, since time.Time) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(model)
	if !since.IsZero() {
		q = q.Where(column+" >= ?", since)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindStoreRead, "failed to count logs", err)
	}
	return count, nil
}

// PurgeBefore 删除某时间之前的日志，返回删除条数
func (r *LogRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	var total int64

	res := r.db.WithContext(ctx).Where("visited_at < ?", before).Delete(&models.VisitorLog{})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.KindStoreDelete, "failed to purge visitor logs", res.Error)
	}
	total += res.RowsAffected

	res = r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.DownloadLog{})
	if res.Error != nil {
		return total, apperr.Wrap(apperr.KindStoreDelete, "failed to purge download logs", res.Error)
	}
	total += res.RowsAffected

	return total, nil
}

// truncate 按字节截断，不切开多字节字符
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}
