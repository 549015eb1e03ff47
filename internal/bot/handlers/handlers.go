// Package handlers Bot 命令与消息处理
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/smysle/fbdl-go/internal/bot/keyboards"
	"github.com/smysle/fbdl-go/internal/bot/utils"
	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/pkg/logger"
)

// resolveTimeout 单次消息处理的最长时间，批量时按条数放大
const resolveTimeout = 90 * time.Second

// Handler Bot 处理器，持有下载服务与会话
type Handler struct {
	downloader *service.Downloader
	sessions   *service.SessionStore
	backup     *service.BackupService
	now        func() time.Time
}

// New 创建处理器，backup 可为 nil
func New(d *service.Downloader, sessions *service.SessionStore, backup *service.BackupService) *Handler {
	return &Handler{downloader: d, sessions: sessions, backup: backup, now: time.Now}
}

// session 每个聊天一个会话
func (h *Handler) session(c tele.Context) *service.Session {
	return h.sessions.Get(fmt.Sprintf("tg:%d", c.Chat().ID))
}

// Start /start
func (h *Handler) Start(c tele.Context) error {
	name := "there"
	if u := c.Sender(); u != nil && u.FirstName != "" {
		name = u.FirstName
	}
	text := fmt.Sprintf(
		"👋 Hi %s!\n\n"+
			"Send me a Facebook video link and I'll give you SD and HD download links.\n\n"+
			"• /add &lt;url&gt; queue a link for batch download\n"+
			"• /batch download all queued links\n"+
			"• /history show recent downloads",
		name,
	)
	return c.Send(text, tele.ModeHTML, tele.NoPreview)
}

// OnText 消息中包含链接时解析，多个链接按批量处理
func (h *Handler) OnText(c tele.Context) error {
	urls := utils.ExtractURLs(c.Text())
	if len(urls) == 0 {
		if c.Chat().Type != tele.ChatPrivate {
			return nil
		}
		return c.Send("🔗 Please paste a Facebook video URL.")
	}

	sess := h.session(c)
	if len(urls) > 1 {
		return h.runBatch(c, sess, urls)
	}
	return h.resolveOne(c, sess, urls[0])
}

func (h *Handler) resolveOne(c tele.Context, sess *service.Session, target string) error {
	progress, _ := c.Bot().Send(c.Chat(), "⏳ Processing...")
	defer utils.DeleteAfter(c.Bot(), progress, 0)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	out := h.downloader.Resolve(ctx, sess, target, "telegram")
	if out.Stale {
		return nil
	}

	if !out.OK() {
		h.reportFailure(c, target, out)
		opts := []interface{}{tele.ModeHTML, tele.NoPreview}
		if kb := keyboards.SupportKeyboard(out.SupportURL); kb != nil {
			opts = append(opts, kb)
		}
		return c.Send(formatFailure(out), opts...)
	}

	text := formatResult(out.Result)
	if extra := formatNotices(out.Notices); extra != "" {
		text += "\n\n" + extra
	}
	opts := []interface{}{tele.ModeHTML, tele.NoPreview}
	if kb := keyboards.QualityKeyboard(out.Result.Low, out.Result.High); kb != nil {
		opts = append(opts, kb)
	}
	return c.Send(text, opts...)
}

// reportFailure 解析失败时转发给 Owner
func (h *Handler) reportFailure(c tele.Context, target string, out service.Outcome) {
	cfg := config.Get()
	if !cfg.Bot.NotifyOwner || cfg.Bot.Owner == 0 || out.ErrorKind == "ValidationError" {
		return
	}
	user := c.Sender()
	if user == nil || user.ID == cfg.Bot.Owner {
		return
	}
	report := formatOwnerReport(user.ID, user.Username, target, out)
	if _, err := c.Bot().Send(&tele.User{ID: cfg.Bot.Owner}, report, tele.ModeHTML, tele.NoPreview); err != nil {
		logger.Warn().Err(err).Msg("转发失败报告给 Owner 失败")
	}
}

// Add /add <url> 加入批量队列
func (h *Handler) Add(c tele.Context) error {
	urls := utils.ExtractURLs(c.Message().Payload)
	if len(urls) == 0 {
		return c.Send("Usage: /add <facebook video url>")
	}
	sess := h.session(c)
	for _, u := range urls {
		sess.AddInput(u)
	}
	queued := nonBlank(sess.Inputs())
	return c.Send(fmt.Sprintf("➕ Queued %d link(s). Send /batch to download them all.", len(queued)))
}

// Batch /batch 批量下载队列中的链接
func (h *Handler) Batch(c tele.Context) error {
	sess := h.session(c)
	urls := nonBlank(sess.Inputs())
	if len(urls) == 0 {
		return c.Send("⚠️ No URLs Found\nPlease add at least one Facebook video URL with /add.")
	}
	return h.runBatch(c, sess, urls)
}

func (h *Handler) runBatch(c tele.Context, sess *service.Session, urls []string) error {
	progress, _ := c.Bot().Send(c.Chat(), fmt.Sprintf("⏳ Processing %d videos...", len(urls)))
	defer utils.DeleteAfter(c.Bot(), progress, 0)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout*time.Duration(len(urls)))
	defer cancel()

	out := h.downloader.Batch(ctx, sess, urls, "telegram")
	if err := c.Send(formatBatch(out, urls), tele.ModeHTML, tele.NoPreview); err != nil {
		return err
	}

	// 成功的条目逐条发送下载按钮
	for _, item := range out.Items {
		if !item.OK() {
			continue
		}
		kb := keyboards.QualityKeyboard(item.Result.Low, item.Result.High)
		if kb == nil {
			continue
		}
		if err := c.Send(formatResult(item.Result), tele.ModeHTML, tele.NoPreview, kb); err != nil {
			logger.Warn().Err(err).Msg("发送批量结果失败")
		}
	}
	return nil
}

// History /history
func (h *Handler) History(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	view := h.downloader.History(ctx, h.session(c))
	text := formatHistory(view.Items, h.now())
	if extra := formatNotices(view.Notices); extra != "" {
		text += "\n\n" + extra
	}
	return c.Send(text, tele.ModeHTML, tele.NoPreview, keyboards.HistoryKeyboard(view.Items))
}

// Clear /clear 仅 Owner，先确认再清空
func (h *Handler) Clear(c tele.Context) error {
	return c.Send("⚠️ This removes <b>all</b> download history for everyone. Continue?",
		tele.ModeHTML, keyboards.ClearConfirmKeyboard())
}

// Backup /backup 仅 Owner，导出历史并以文件发送
func (h *Handler) Backup(c tele.Context) error {
	if h.backup == nil {
		return c.Send("Backup is not configured.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := h.backup.Backup(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Bot 手动备份失败")
		return c.Send("❌ Backup failed: " + err.Error())
	}

	doc := &tele.Document{
		File:     tele.FromDisk(res.FilePath),
		FileName: res.Filename,
		Caption: fmt.Sprintf("💾 %d records · %s · %s",
			res.Records, service.FormatSize(res.Size), res.Duration.Round(time.Millisecond)),
	}
	return c.Send(doc)
}

// OnCallback 回调查询处理器
func (h *Handler) OnCallback(c tele.Context) error {
	action, args := utils.CallbackAction(c.Callback().Data)
	logger.Debug().Str("action", action).Strs("args", args).Msg("收到回调")

	switch action {
	case keyboards.ActionClose:
		c.Respond()
		return c.Delete()
	case keyboards.ActionHistory:
		if len(args) > 0 && args[0] == "clear" {
			return h.confirmClear(c)
		}
		return h.refreshHistory(c)
	default:
		return c.Respond(&tele.CallbackResponse{Text: "Unknown action"})
	}
}

func (h *Handler) refreshHistory(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess := h.session(c)
	notices := h.downloader.Refresh(ctx, sess)
	view := h.downloader.History(ctx, sess)

	text := formatHistory(view.Items, h.now())
	if extra := formatNotices(notices); extra != "" {
		text += "\n\n" + extra
	}
	c.Respond(&tele.CallbackResponse{Text: "Refreshed"})
	return c.Edit(text, tele.ModeHTML, tele.NoPreview, keyboards.HistoryKeyboard(view.Items))
}

func (h *Handler) confirmClear(c tele.Context) error {
	if !config.Get().IsOwner(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Owner only", ShowAlert: true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notices, err := h.downloader.ClearHistory(ctx, h.session(c))
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", c.Sender().ID).Msg("Bot 清空历史失败")
	}
	c.Respond()
	if len(notices) == 0 {
		return nil
	}
	return c.Edit(fmt.Sprintf("%s\n%s", notices[0].Title, notices[0].Description))
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
