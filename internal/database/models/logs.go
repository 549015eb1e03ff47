// Package models 数据模型 - 访问与下载日志
package models

import (
	"time"
)

// VisitorLog 访问日志，只追加
type VisitorLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	VisitedAt time.Time `gorm:"column:visited_at;index;not null" json:"visited_at"`
	UserAgent *string   `gorm:"column:user_agent;size:500" json:"user_agent,omitempty"`
	Path      *string   `gorm:"column:path;size:255" json:"path,omitempty"`
}

// TableName 表名
func (VisitorLog) TableName() string {
	return "visitor_logs"
}

// DownloadLog 解析请求日志，只追加
type DownloadLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;index;not null" json:"created_at"`
	URL       *string   `gorm:"column:url;type:text" json:"url,omitempty"`
	UserAgent *string   `gorm:"column:user_agent;size:500" json:"user_agent,omitempty"`
}

// TableName 表名
func (DownloadLog) TableName() string {
	return "download_logs"
}
