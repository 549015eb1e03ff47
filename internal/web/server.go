// Package web Web 页面与 JSON API
package web

import (
	"context"
	"fmt"
	"html/template"
	"runtime"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/service"
	pkglogger "github.com/smysle/fbdl-go/pkg/logger"
)

const sessionCookie = "fbdl_session"

// VisitLogger 访问日志
type VisitLogger interface {
	LogVisit(ctx context.Context, userAgent, path string) error
}

// Deps 服务依赖
type Deps struct {
	AppName    string
	Timezone   string
	Downloader *service.Downloader
	Sessions   *service.SessionStore
	Stats      *service.StatsService
	Visits     VisitLogger
	DB         *gorm.DB
}

// Server Web 服务器
type Server struct {
	app       *fiber.App
	cfg       *config.APIConfig
	deps      Deps
	page      *template.Template
	startTime time.Time
}

// New 创建 Web 服务器
func New(cfg *config.APIConfig, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     joinOrigins(cfg.AllowOrigins),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))

	if deps.AppName == "" {
		deps.AppName = config.Default().AppName
	}

	server := &Server{
		app:       app,
		cfg:       cfg,
		deps:      deps,
		page:      template.Must(template.New("index").Funcs(pageFuncs).Parse(indexTemplate)),
		startTime: time.Now(),
	}

	server.registerRoutes()
	return server
}

// registerRoutes 注册路由
func (s *Server) registerRoutes() {
	s.app.Get("/", s.index)
	s.app.Get("/health", s.healthCheck)
	s.app.Get("/status", s.detailedStatus)

	v1 := s.app.Group("/api/v1")
	v1.Post("/resolve", s.resolve)
	v1.Post("/batch", s.batch)
	v1.Get("/history", s.history)
	v1.Delete("/history", s.clearHistory)
	v1.Post("/trigger", s.trigger)
	v1.Get("/support", s.support)

	admin := v1.Group("/stats", s.requireAdmin)
	admin.Get("/", s.stats)
	admin.Get("/card.png", s.statsCard)
}

// App 返回底层 fiber 实例，测试使用
func (s *Server) App() *fiber.App {
	return s.app
}

// Start 启动服务器
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		pkglogger.Info().Msg("【API服务】未启用，跳过...")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	pkglogger.Info().Str("addr", addr).Msg("【API服务】启动中...")

	return s.app.Listen(addr)
}

// Stop 停止服务器
func (s *Server) Stop() error {
	return s.app.Shutdown()
}

// session 读取或创建当前客户端的会话
func (s *Server) session(c *fiber.Ctx) *service.Session {
	id := c.Cookies(sessionCookie)
	sess := s.deps.Sessions.Get(id)
	if sess.ID != id {
		ttl := s.cfg.SessionTTL
		if ttl <= 0 {
			ttl = 60
		}
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(time.Duration(ttl) * time.Minute),
		})
	}
	return sess
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	})
}

// StatusResponse 详细状态响应
type StatusResponse struct {
	Status   string         `json:"status"`
	App      string         `json:"app"`
	Uptime   string         `json:"uptime"`
	Sessions int            `json:"sessions"`
	System   SystemInfo     `json:"system"`
	Database DatabaseStatus `json:"database"`
}

// SystemInfo 系统信息
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     string `json:"mem_alloc"`
}

// DatabaseStatus 数据库状态
type DatabaseStatus struct {
	Connected bool   `json:"connected"`
	Driver    string `json:"driver,omitempty"`
}

func (s *Server) detailedStatus(c *fiber.Ctx) error {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbStatus := DatabaseStatus{}
	if db := s.deps.DB; db != nil {
		dbStatus.Driver = db.Dialector.Name()
		if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(c.UserContext()) == nil {
			dbStatus.Connected = true
		}
	}

	return c.JSON(StatusResponse{
		Status:   "ok",
		App:      s.deps.AppName,
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Sessions: s.deps.Sessions.Count(),
		System: SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/1024/1024),
		},
		Database: dbStatus,
	})
}

func joinOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
