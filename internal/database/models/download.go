// Package models 数据模型 - 下载记录
package models

import (
	"time"

	"github.com/smysle/fbdl-go/internal/validator"
)

// DownloadRecord 下载历史记录，写入后不再修改
type DownloadRecord struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          *string   `gorm:"column:title;size:500" json:"title"`
	Thumbnail      *string   `gorm:"column:thumbnail;type:text" json:"thumbnail"`
	LowQualityURL  *string   `gorm:"column:low_quality_url;type:text" json:"low_quality_url"`
	HighQualityURL *string   `gorm:"column:high_quality_url;type:text" json:"high_quality_url"`
	OriginalURL    string    `gorm:"column:original_url;type:text;not null" json:"original_url"`
	DownloadedAt   time.Time `gorm:"column:downloaded_at;index;not null" json:"downloaded_at"`
}

// TableName 默认表名，实际表名由配置决定
func (DownloadRecord) TableName() string {
	return "recent_facebook_downloads"
}

// DisplayTitle 标题，缺失时使用占位文本
func (d *DownloadRecord) DisplayTitle(placeholder string) string {
	if d.Title == nil || *d.Title == "" {
		return placeholder
	}
	return *d.Title
}

// ThumbnailOr 缩略图链接，不是合法 http(s) 链接时使用占位图
func (d *DownloadRecord) ThumbnailOr(placeholder string) string {
	if d.Thumbnail != nil && validator.IsValidHTTPURL(*d.Thumbnail) {
		return *d.Thumbnail
	}
	return placeholder
}

// Low 标清链接
func (d *DownloadRecord) Low() string {
	if d.LowQualityURL == nil {
		return ""
	}
	return *d.LowQualityURL
}

// High 高清链接
func (d *DownloadRecord) High() string {
	if d.HighQualityURL == nil {
		return ""
	}
	return *d.HighQualityURL
}

// HasQuality 至少有一个清晰度可下载
func (d *DownloadRecord) HasQuality() bool {
	return d.Low() != "" || d.High() != ""
}

// SourceHost 原始链接的主机名
func (d *DownloadRecord) SourceHost() string {
	if d.OriginalURL == "" {
		return "N/A"
	}
	if host := validator.Hostname(d.OriginalURL); host != "" {
		return host
	}
	return "N/A"
}

// StrPtr 空串返回 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
