// Package repository 下载历史数据仓库
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/database/models"
)

// clearSentinel 不存在的 ID，用于无条件删除
const clearSentinel = -1

// HistoryRepository 下载历史仓库
type HistoryRepository struct {
	db    *gorm.DB
	table string
}

// NewHistoryRepository 创建下载历史仓库
func NewHistoryRepository(db *gorm.DB, table string) *HistoryRepository {
	if table == "" {
		table = models.DownloadRecord{}.TableName()
	}
	return &HistoryRepository{db: db, table: table}
}

// Table 当前使用的表名
func (r *HistoryRepository) Table() string {
	return r.table
}

func (r *HistoryRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// Insert 写入一条记录，返回带 ID 的记录
func (r *HistoryRepository) Insert(ctx context.Context, record *models.DownloadRecord) (*models.DownloadRecord, error) {
	if record.DownloadedAt.IsZero() {
		record.DownloadedAt = time.Now()
	}
	if err := r.query(ctx).Create(record).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStoreWrite, "failed to save download history", err)
	}
	return record, nil
}

// ListRecent 按下载时间倒序获取最近的记录
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]models.DownloadRecord, error) {
	if limit <= 0 {
		return []models.DownloadRecord{}, nil
	}

	records := make([]models.DownloadRecord, 0, limit)
	err := r.query(ctx).
		Order("downloaded_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreRead, "failed to load download history", err)
	}
	return records, nil
}

// ClearAll 删除全部记录
func (r *HistoryRepository) ClearAll(ctx context.Context) error {
	err := r.query(ctx).
		Where("id <> ?", clearSentinel).
		Delete(&models.DownloadRecord{}).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStoreDelete, "could not clear download history", err)
	}
	return nil
}

// CountSince 统计某时间之后的下载数，since 为零值时统计全部
func (r *HistoryRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	q := r.query(ctx)
	if !since.IsZero() {
		q = q.Where("downloaded_at >= ?", since)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindStoreRead, "failed to count downloads", err)
	}
	return count, nil
}

// ListAll 按 ID 顺序获取全部记录，用于备份
func (r *HistoryRepository) ListAll(ctx context.Context) ([]models.DownloadRecord, error) {
	var records []models.DownloadRecord
	if err := r.query(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStoreRead, "failed to load download history", err)
	}
	return records, nil
}
