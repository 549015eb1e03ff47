// FB Video Grabber
// Facebook 视频下载前端：Web 页面、JSON API 与 Telegram Bot
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smysle/fbdl-go/internal/bot"
	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/database"
	"github.com/smysle/fbdl-go/internal/database/repository"
	"github.com/smysle/fbdl-go/internal/resolver"
	"github.com/smysle/fbdl-go/internal/scheduler"
	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/internal/web"
	"github.com/smysle/fbdl-go/pkg/logger"
)

var (
	configPath = flag.String("config", "config.json", "配置文件路径")
	debug      = flag.Bool("debug", false, "调试模式")
)

func main() {
	flag.Parse()

	// 加载配置，文件不存在时使用默认值
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Init(logger.Options{Debug: *debug})
			logger.Fatal().Err(err).Str("path", *configPath).Msg("加载配置失败")
		}
		// 无配置文件时以单机模式运行：sqlite + Web 页面
		cfg = config.Default()
		cfg.Database.Driver = "sqlite"
		cfg.API.Enabled = true
		config.Set(cfg)
	}

	logger.Init(logger.Options{Debug: *debug, File: cfg.Log.File, Timezone: cfg.Log.Timezone})
	logger.Info().Str("app", cfg.AppName).Msg("🎬 启动中...")

	// 初始化数据库
	if err := database.Init(&cfg.Database, cfg.History.Table); err != nil {
		logger.Fatal().Err(err).Msg("初始化数据库失败")
	}
	defer database.Close()

	history := repository.NewHistoryRepository(database.GetDB(), cfg.History.Table)
	logs := repository.NewLogRepository(database.GetDB())

	downloader := service.NewDownloader(resolver.GetClient(), history, logs, service.OptionsFromConfig(cfg))
	sessions := service.NewSessionStore(time.Duration(cfg.API.SessionTTL)*time.Minute, cfg.History.RecentLimit)
	stats := service.NewStatsService(logs, history)
	backup := service.NewBackupService(history, cfg.Scheduler.BackupDir)

	// 定时任务
	sched := scheduler.New(cfg, scheduler.Deps{
		Downloader: downloader,
		Sessions:   sessions,
		Logs:       logs,
		Stats:      stats,
		Backup:     backup,
	})
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("启动定时任务失败")
	}
	defer sched.Stop()
	logger.Info().Int("jobs", sched.Jobs()).Msg("✅ 定时任务调度器启动")

	// Web 页面与 API
	webServer := web.New(&cfg.API, web.Deps{
		AppName:    cfg.AppName,
		Timezone:   cfg.Log.Timezone,
		Downloader: downloader,
		Sessions:   sessions,
		Stats:      stats,
		Visits:     logs,
		DB:         database.GetDB(),
	})
	go func() {
		if err := webServer.Start(); err != nil {
			logger.Error().Err(err).Msg("Web 服务启动失败")
		}
	}()
	defer webServer.Stop()

	// Telegram Bot 可选
	var tgBot *bot.Bot
	if cfg.Bot.Enabled {
		tgBot, err = bot.New(&cfg.Bot, downloader, sessions, backup)
		if err != nil {
			logger.Fatal().Err(err).Msg("初始化 Telegram Bot 失败")
		}
		go tgBot.Run()
		logger.Info().Msg("✅ Telegram Bot 初始化完成")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("🚀 启动成功! 按 Ctrl+C 停止...")
	<-quit

	logger.Info().Msg("正在关闭服务...")
	if tgBot != nil {
		tgBot.Stop()
	}
	logger.Info().Msg("👋 再见!")
}
