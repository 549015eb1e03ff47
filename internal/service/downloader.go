// Package service 下载流程编排
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/database/models"
	"github.com/smysle/fbdl-go/internal/resolver"
	"github.com/smysle/fbdl-go/internal/trigger"
	"github.com/smysle/fbdl-go/internal/validator"
	"github.com/smysle/fbdl-go/pkg/logger"
)

// Options 下载服务参数
type Options struct {
	RequireFacebook  bool
	RecentLimit      int
	PlaceholderTitle string
	PlaceholderThumb string
	Support          config.SupportConfig
}

// OptionsFromConfig 从全局配置生成参数
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RequireFacebook:  cfg.Resolver.RequireFacebook,
		RecentLimit:      cfg.History.RecentLimit,
		PlaceholderTitle: cfg.History.PlaceholderTitle,
		PlaceholderThumb: cfg.History.PlaceholderThumb,
		Support:          cfg.Support,
	}
}

// Downloader 下载服务：校验、解析、保存历史、生成下载动作
type Downloader struct {
	resolver Resolver
	store    HistoryStore
	logs     AttemptLogger
	opts     Options
	now      func() time.Time
}

// NewDownloader 创建下载服务，logs 可以为 nil
func NewDownloader(r Resolver, store HistoryStore, logs AttemptLogger, opts Options) *Downloader {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = config.DefaultRecentLimit
	}
	if opts.PlaceholderTitle == "" {
		opts.PlaceholderTitle = "Untitled Video"
	}
	if opts.PlaceholderThumb == "" {
		opts.PlaceholderThumb = config.DefaultPlaceholderThumb
	}
	return &Downloader{
		resolver: r,
		store:    store,
		logs:     logs,
		opts:     opts,
		now:      time.Now,
	}
}

// VideoResult 解析成功后展示的结果卡片
type VideoResult struct {
	RecordID     int64           `json:"record_id,omitempty"`
	Title        string          `json:"title"`
	Thumbnail    string          `json:"thumbnail"`
	Creator      string          `json:"creator,omitempty"`
	Low          string          `json:"low,omitempty"`
	High         string          `json:"high,omitempty"`
	LowFilename  string          `json:"low_filename"`
	HighFilename string          `json:"high_filename"`
	Links        []resolver.Link `json:"links"`
	OriginalURL  string          `json:"original_url"`
	DownloadedAt time.Time       `json:"downloaded_at"`
}

// Outcome 单次解析的结果
type Outcome struct {
	Result     *VideoResult `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	ErrorKind  string       `json:"error_kind,omitempty"`
	Saved      bool         `json:"saved"`
	Stale      bool         `json:"stale,omitempty"`
	SupportURL string       `json:"support_url,omitempty"`
	Notices    []Notice     `json:"notices"`
}

// OK 是否解析成功
func (o *Outcome) OK() bool {
	return o.Result != nil && o.Error == ""
}

// Resolve 解析单个链接并写入历史
func (d *Downloader) Resolve(ctx context.Context, sess *Session, rawURL, userAgent string) Outcome {
	target := strings.TrimSpace(rawURL)
	if err := validator.Validate(target, d.opts.RequireFacebook); err != nil {
		msg := apperr.MessageOf(err)
		sess.fail(msg)
		return Outcome{
			Error:     msg,
			ErrorKind: apperr.KindOf(err).String(),
			Notices:   []Notice{failure("⚠️ Invalid URL", msg)},
		}
	}

	gen := sess.begin()
	d.logAttempt(target, userAgent)

	res, err := d.resolver.Resolve(ctx, target)
	if err != nil {
		out := d.failedOutcome(target, err)
		if !sess.finish(gen, nil, out.Error) {
			logger.Debug().Str("url", target).Msg("丢弃过期的解析结果")
			return Outcome{Error: out.Error, ErrorKind: out.ErrorKind, Stale: true, Notices: []Notice{}}
		}
		return out
	}

	result, saved, notices := d.save(ctx, sess, target, res)
	out := Outcome{Result: result, Saved: saved}
	if !sess.finish(gen, result, "") {
		logger.Debug().Str("url", target).Msg("丢弃过期的解析结果")
		out.Stale = true
		out.Notices = notices
		return out
	}

	out.Notices = append([]Notice{info("🎉 Download Ready!", truncateRunes(result.Title, 50))}, notices...)
	return out
}

// failedOutcome 把解析错误转换为提示
func (d *Downloader) failedOutcome(target string, err error) Outcome {
	msg := apperr.MessageOf(err)
	return Outcome{
		Error:      msg,
		ErrorKind:  apperr.KindOf(err).String(),
		SupportURL: d.SupportLink(target, msg),
		Notices:    []Notice{failure("❌ Download Failed", "Unable to process URL. "+msg)},
	}
}

// save 构建结果并写入历史，写入失败不影响结果展示
func (d *Downloader) save(ctx context.Context, sess *Session, target string, res *resolver.Resolution) (*VideoResult, bool, []Notice) {
	result := d.buildResult(target, res)
	if result.Low == "" && result.High == "" {
		return result, false, nil
	}

	record := &models.DownloadRecord{
		Title:          models.StrPtr(res.Title),
		Thumbnail:      models.StrPtr(res.Thumbnail),
		LowQualityURL:  models.StrPtr(result.Low),
		HighQualityURL: models.StrPtr(result.High),
		OriginalURL:    target,
		DownloadedAt:   result.DownloadedAt,
	}

	stored, err := d.store.Insert(ctx, record)
	if err != nil {
		logger.Error().Err(err).Str("url", target).Msg("保存下载历史失败")
		return result, false, []Notice{failure("DB Save Error 💾", "Failed to save download history: "+apperr.MessageOf(err))}
	}

	if stored != nil && stored.ID != 0 {
		result.RecordID = stored.ID
		sess.pushRecent(*stored)
	} else {
		// 没有拿到写入的行，重新拉取列表
		d.Refresh(ctx, sess)
	}
	return result, true, nil
}

func (d *Downloader) buildResult(target string, res *resolver.Resolution) *VideoResult {
	title := res.Title
	if title == "" {
		title = d.opts.PlaceholderTitle
	}
	thumb := d.opts.PlaceholderThumb
	if validator.IsValidHTTPURL(res.Thumbnail) {
		thumb = res.Thumbnail
	}
	return &VideoResult{
		Title:        title,
		Thumbnail:    thumb,
		Creator:      res.Creator,
		Low:          res.Low(),
		High:         res.High(),
		LowFilename:  trigger.FileName(res.Title, "low"),
		HighFilename: trigger.FileName(res.Title, "high"),
		Links:        res.Links,
		OriginalURL:  target,
		DownloadedAt: d.now(),
	}
}

// logAttempt 异步记录解析请求
func (d *Downloader) logAttempt(target, userAgent string) {
	if d.logs == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.logs.LogDownload(ctx, target, userAgent); err != nil {
			logger.Warn().Err(err).Msg("写入解析日志失败")
		}
	}()
}

// BatchOutcome 批量解析结果
type BatchOutcome struct {
	Succeeded int       `json:"succeeded"`
	Total     int       `json:"total"`
	Items     []Outcome `json:"items"`
	Inputs    []string  `json:"inputs"`
	Notices   []Notice  `json:"notices"`
}

// Batch 顺序解析多个链接，两次请求之间固定等待
func (d *Downloader) Batch(ctx context.Context, sess *Session, rawURLs []string, userAgent string) BatchOutcome {
	var urls []string
	for _, u := range rawURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return BatchOutcome{
			Items:   []Outcome{},
			Inputs:  sess.Inputs(),
			Notices: []Notice{failure("⚠️ No URLs Found", "Please add at least one Facebook video URL.")},
		}
	}

	sess.setPending(true)
	defer sess.setPending(false)

	out := BatchOutcome{Total: len(urls), Items: make([]Outcome, len(urls))}

	// 本地校验不通过的不发请求
	var targets []string
	var positions []int
	for i, u := range urls {
		if err := validator.Validate(u, d.opts.RequireFacebook); err != nil {
			msg := apperr.MessageOf(err)
			out.Items[i] = Outcome{
				Error:     msg,
				ErrorKind: apperr.KindOf(err).String(),
				Notices:   []Notice{failure("⚠️ Invalid URL", msg)},
			}
			continue
		}
		targets = append(targets, u)
		positions = append(positions, i)
	}

	for _, u := range targets {
		d.logAttempt(u, userAgent)
	}

	_, err := d.resolver.ResolveBatch(ctx, targets, func(i int, target string, res *resolver.Resolution, err error) {
		pos := positions[i]
		if err != nil {
			out.Items[pos] = d.failedOutcome(target, err)
			return
		}
		result, saved, notices := d.save(ctx, sess, target, res)
		out.Items[pos] = Outcome{
			Result:  result,
			Saved:   saved,
			Notices: append([]Notice{info("🎉 Download Ready!", truncateRunes(result.Title, 50))}, notices...),
		}
		out.Succeeded++
	})
	if err != nil {
		logger.Warn().Err(err).Msg("批量解析被中断")
	}

	sess.ResetInputs()
	out.Inputs = sess.Inputs()
	out.Notices = append(out.Notices, info(
		"🚀 Batch Download Complete!",
		fmt.Sprintf("Successfully processed %d out of %d videos.", out.Succeeded, out.Total),
	))
	return out
}

// HistoryView 最近下载列表
type HistoryView struct {
	Items   []HistoryItem `json:"items"`
	Notices []Notice      `json:"notices"`
}

// HistoryItem 列表中的一条记录
type HistoryItem struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail"`
	Low          string    `json:"low,omitempty"`
	High         string    `json:"high,omitempty"`
	LowFilename  string    `json:"low_filename"`
	HighFilename string    `json:"high_filename"`
	Source       string    `json:"source"`
	Downloadable bool      `json:"downloadable"`
	OriginalURL  string    `json:"original_url"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// History 返回会话中的最近记录，首次访问时从存储加载
func (d *Downloader) History(ctx context.Context, sess *Session) HistoryView {
	var notices []Notice
	if !sess.isLoaded() {
		notices = d.Refresh(ctx, sess)
	}
	return HistoryView{Items: d.historyItems(sess.Recent()), Notices: nonNil(notices)}
}

// Refresh 从存储重新拉取最近记录，失败时保留原列表
func (d *Downloader) Refresh(ctx context.Context, sess *Session) []Notice {
	records, err := d.store.ListRecent(ctx, d.opts.RecentLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("加载下载历史失败")
		return []Notice{failure("History Unavailable", "Could not load download history: "+apperr.MessageOf(err))}
	}
	sess.setRecent(records)
	return nil
}

func (d *Downloader) historyItems(records []models.DownloadRecord) []HistoryItem {
	items := make([]HistoryItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		title := rec.DisplayTitle(d.opts.PlaceholderTitle)
		items = append(items, HistoryItem{
			ID:           rec.ID,
			Title:        title,
			Thumbnail:    rec.ThumbnailOr(d.opts.PlaceholderThumb),
			Low:          rec.Low(),
			High:         rec.High(),
			LowFilename:  trigger.FileName(title, "low"),
			HighFilename: trigger.FileName(title, "high"),
			Source:       rec.SourceHost(),
			Downloadable: rec.HasQuality(),
			OriginalURL:  rec.OriginalURL,
			DownloadedAt: rec.DownloadedAt,
		})
	}
	return items
}

// ClearHistory 清空全部历史；失败时本地列表保持不变
func (d *Downloader) ClearHistory(ctx context.Context, sess *Session) ([]Notice, error) {
	if err := d.store.ClearAll(ctx); err != nil {
		logger.Error().Err(err).Msg("清空下载历史失败")
		return []Notice{failure("DB Clear Error 💥", "Could not clear download history: "+apperr.MessageOf(err))}, err
	}
	sess.setRecent([]models.DownloadRecord{})
	logger.Info().Str("session", sess.ID).Msg("下载历史已清空")
	return []Notice{info("🗑️ Recent downloads cleared!", "All download history has been removed from the cloud.")}, nil
}

// Trigger 生成浏览器下载动作
func (d *Downloader) Trigger(fileURL, filename string) (*trigger.Action, []Notice) {
	action, err := trigger.Trigger(fileURL, filename)
	if err != nil {
		return nil, []Notice{failure("Download Error", apperr.MessageOf(err))}
	}
	return action, []Notice{info("🚀 Download Started", "Downloading "+action.Filename)}
}

// SupportLink 生成预填好失败链接和错误信息的客服链接
func (d *Downloader) SupportLink(failedURL, errMsg string) string {
	contact := strings.TrimSpace(d.opts.Support.Contact)
	if contact == "" {
		return ""
	}

	text := fmt.Sprintf("Hi, I couldn't download this video.\nURL: %s\nError: %s", failedURL, errMsg)
	switch strings.ToLower(d.opts.Support.Channel) {
	case "telegram":
		return fmt.Sprintf("https://t.me/%s?text=%s", strings.TrimPrefix(contact, "@"), url.QueryEscape(text))
	case "email":
		return fmt.Sprintf("mailto:%s?subject=%s&body=%s", contact, url.QueryEscape("Download problem"), url.QueryEscape(text))
	default:
		digits := strings.TrimPrefix(contact, "+")
		return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text))
	}
}

func nonNil(n []Notice) []Notice {
	if n == nil {
		return []Notice{}
	}
	return n
}
