// Package bot Telegram Bot 核心
package bot

import (
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/smysle/fbdl-go/internal/bot/handlers"
	"github.com/smysle/fbdl-go/internal/bot/middleware"
	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/pkg/logger"
)

// Bot Telegram Bot 实例
type Bot struct {
	*tele.Bot
	cfg *config.BotConfig
	h   *handlers.Handler
}

// New 创建 Bot
func New(cfg *config.BotConfig, d *service.Downloader, sessions *service.SessionStore, backup *service.BackupService) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error().Err(err).Msg("Bot 错误")
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Bot: b,
		cfg: cfg,
		h:   handlers.New(d, sessions, backup),
	}

	bot.registerMiddleware()
	bot.registerHandlers()
	bot.setCommands()

	return bot, nil
}

// registerMiddleware 注册中间件
func (b *Bot) registerMiddleware() {
	b.Use(middleware.Logger())
	b.Use(middleware.Recover())
}

// registerHandlers 注册所有处理器
func (b *Bot) registerHandlers() {
	b.Handle("/start", b.h.Start)
	b.Handle("/history", b.h.History)

	// 解析相关命令限流
	limited := b.Group()
	limited.Use(middleware.RateLimit(b.cfg.RateLimit))
	limited.Handle("/add", b.h.Add)
	limited.Handle("/batch", b.h.Batch)
	limited.Handle(tele.OnText, b.h.OnText)

	ownerGroup := b.Group()
	ownerGroup.Use(middleware.OwnerOnly())
	ownerGroup.Handle("/clear", b.h.Clear)
	ownerGroup.Handle("/backup", b.h.Backup)

	b.Handle(tele.OnCallback, b.h.OnCallback)
}

// setCommands 设置命令列表
func (b *Bot) setCommands() {
	userCmds := []tele.Command{
		{Text: "start", Description: "How to use this bot"},
		{Text: "add", Description: "Queue a link for batch download"},
		{Text: "batch", Description: "Download all queued links"},
		{Text: "history", Description: "Recent downloads"},
	}
	if err := b.SetCommands(userCmds); err != nil {
		logger.Warn().Err(err).Msg("设置命令列表失败")
	}

	if b.cfg.Owner == 0 {
		return
	}
	ownerCmds := append(userCmds,
		tele.Command{Text: "clear", Description: "Clear all download history [owner]"},
		tele.Command{Text: "backup", Description: "Export download history [owner]"},
	)
	if err := b.SetCommands(ownerCmds, tele.CommandScope{Type: tele.CommandScopeChat, ChatID: b.cfg.Owner}); err != nil {
		logger.Warn().Err(err).Msg("设置 Owner 命令列表失败")
	}
}

// Run 运行 Bot，阻塞直到 Stop
func (b *Bot) Run() {
	logger.Info().Str("bot", b.Me.Username).Msg("Bot 启动中...")
	b.Start()
}

// Stop 停止 Bot
func (b *Bot) Stop() {
	logger.Info().Msg("Bot 停止中...")
	b.Bot.Stop()
}
