// Package config 配置管理模块
package config

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// 默认值，与线上前端保持一致
const (
	DefaultResolverEndpoint = "https://api-aswin-sparky.koyeb.app/api/downloader/fbdl"
	DefaultHistoryTable     = "recent_facebook_downloads"
	DefaultRecentLimit      = 10
	DefaultPlaceholderThumb = "https://images.unsplash.com/photo-1611162616805-6a4093048d6a?ixlib=rb-4.0.3&auto=format&fit=crop&w=100&q=60"
)

// Config 全局配置结构
type Config struct {
	AppName string `json:"app_name"`

	Log       LogConfig       `json:"log"`
	Resolver  ResolverConfig  `json:"resolver"`
	Database  DatabaseConfig  `json:"database"`
	History   HistoryConfig   `json:"history"`
	API       APIConfig       `json:"api"`
	Bot       BotConfig       `json:"bot"`
	Support   SupportConfig   `json:"support"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

// LogConfig 日志配置
type LogConfig struct {
	File     string `json:"file"`
	Timezone string `json:"timezone"`
}

// ResolverConfig 解析 API 配置
type ResolverConfig struct {
	Endpoint string `json:"endpoint"`
	// Shape 上游返回格式: pair / downloads / auto
	Shape           string `json:"shape"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	BatchDelayMS    int    `json:"batch_delay_ms"`
	RequireFacebook bool   `json:"require_facebook"`
	UserAgent       string `json:"user_agent"`
}

// Timeout 请求超时，0 表示使用传输层默认值
func (r ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// BatchDelay 批量解析的间隔
func (r ResolverConfig) BatchDelay() time.Duration {
	return time.Duration(r.BatchDelayMS) * time.Millisecond
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"` // mysql / sqlite
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	// Path sqlite 文件路径
	Path string `json:"path"`
}

// HistoryConfig 下载历史配置
type HistoryConfig struct {
	Table            string `json:"table"`
	RecentLimit      int    `json:"recent_limit"`
	PlaceholderThumb string `json:"placeholder_thumb"`
	PlaceholderTitle string `json:"placeholder_title"`
}

// APIConfig Web 服务配置
type APIConfig struct {
	Enabled      bool     `json:"enabled"`
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	AllowOrigins []string `json:"allow_origins"`
	AdminToken   string   `json:"admin_token"`
	SessionTTL   int      `json:"session_ttl_minutes"`
}

// BotConfig Telegram Bot 配置
type BotConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	Owner   int64  `json:"owner"`
	// RateLimit 每个用户每分钟最多解析次数，Owner 不受限制
	RateLimit int `json:"rate_limit"`
	// NotifyOwner 解析失败时转发给 Owner
	NotifyOwner bool `json:"notify_owner"`
}

// SupportConfig 客服联系方式
type SupportConfig struct {
	// Channel whatsapp / telegram
	Channel string `json:"channel"`
	Contact string `json:"contact"`
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	RefreshRecent    bool   `json:"refresh_recent"`
	LogRetentionDays int    `json:"log_retention_days"` // 0 表示永久保留
	BackupHistory    bool   `json:"backup_history"`
	BackupDir        string `json:"backup_dir"`
	BackupKeepDays   int    `json:"backup_keep_days"`
}

var (
	cfg     *Config
	cfgLock sync.RWMutex
)

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// 设置默认值
	config.setDefaults()

	Set(&config)
	return &config, nil
}

// Default 返回全部使用默认值的配置
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Set 替换全局配置
func Set(c *Config) {
	cfgLock.Lock()
	cfg = c
	cfgLock.Unlock()
}

// Get 获取全局配置（线程安全），未加载时返回默认配置
func Get() *Config {
	cfgLock.RLock()
	defer cfgLock.RUnlock()
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// setDefaults 设置默认值
func (c *Config) setDefaults() {
	if c.AppName == "" {
		c.AppName = "FB Video Grabber"
	}
	if c.Log.File == "" {
		c.Log.File = "log/fbdl.log"
	}
	if c.Resolver.Endpoint == "" {
		c.Resolver.Endpoint = DefaultResolverEndpoint
	}
	if c.Resolver.Shape == "" {
		c.Resolver.Shape = "auto"
	}
	if c.Resolver.TimeoutSeconds == 0 {
		c.Resolver.TimeoutSeconds = 30
	}
	if c.Resolver.BatchDelayMS == 0 {
		c.Resolver.BatchDelayMS = 1000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/fbdl.db"
	}
	if c.History.Table == "" {
		c.History.Table = DefaultHistoryTable
	}
	if c.History.RecentLimit == 0 {
		c.History.RecentLimit = DefaultRecentLimit
	}
	if c.History.PlaceholderThumb == "" {
		c.History.PlaceholderThumb = DefaultPlaceholderThumb
	}
	if c.History.PlaceholderTitle == "" {
		c.History.PlaceholderTitle = "Untitled Video"
	}
	if c.API.Port == 0 {
		c.API.Port = 8838
	}
	if len(c.API.AllowOrigins) == 0 {
		c.API.AllowOrigins = []string{"*"}
	}
	if c.API.SessionTTL == 0 {
		c.API.SessionTTL = 60
	}
	if c.Support.Channel == "" {
		c.Support.Channel = "whatsapp"
	}
	if c.Bot.RateLimit == 0 {
		c.Bot.RateLimit = 10
	}
	if c.Scheduler.BackupDir == "" {
		c.Scheduler.BackupDir = "backups"
	}
	if c.Scheduler.BackupKeepDays == 0 {
		c.Scheduler.BackupKeepDays = 7
	}
}

// IsOwner 判断是否是 Bot Owner
func (c *Config) IsOwner(userID int64) bool {
	return c.Bot.Owner != 0 && userID == c.Bot.Owner
}
