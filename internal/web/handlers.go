package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/internal/trigger"
	pkglogger "github.com/smysle/fbdl-go/pkg/logger"
)

// statusFor 错误类别对应的 HTTP 状态码
func statusFor(kind string) int {
	switch kind {
	case "":
		return fiber.StatusOK
	case apperr.KindValidation.String(), apperr.KindNoValidURL.String():
		return fiber.StatusBadRequest
	case apperr.KindNetwork.String(), apperr.KindRequestFailed.String(), apperr.KindInvalidResponse.String():
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// index 主页面
func (s *Server) index(c *fiber.Ctx) error {
	sess := s.session(c)
	s.logVisit(c.Get(fiber.HeaderUserAgent), c.Path())

	view := s.deps.Downloader.History(c.UserContext(), sess)

	var buf bytes.Buffer
	err := s.page.Execute(&buf, pageData{
		AppName: s.deps.AppName,
		Items:   view.Items,
		Notices: view.Notices,
		Now:     time.Now(),
	})
	if err != nil {
		pkglogger.Error().Err(err).Msg("渲染页面失败")
		return fiber.ErrInternalServerError
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// logVisit 异步记录访问
func (s *Server) logVisit(userAgent, path string) {
	if s.deps.Visits == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.deps.Visits.LogVisit(ctx, userAgent, path); err != nil {
			pkglogger.Warn().Err(err).Msg("写入访问日志失败")
		}
	}()
}

// ResolveRequest 单个解析请求
type ResolveRequest struct {
	URL string `json:"url"`
}

type resolveResponse struct {
	service.Outcome
	Recent []service.HistoryItem `json:"recent"`
}

func (s *Server) resolve(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess := s.session(c)
	out := s.deps.Downloader.Resolve(c.UserContext(), sess, req.URL, c.Get(fiber.HeaderUserAgent))
	resp := resolveResponse{
		Outcome: out,
		Recent:  s.deps.Downloader.History(c.UserContext(), sess).Items,
	}
	return c.Status(statusFor(out.ErrorKind)).JSON(resp)
}

// BatchRequest 批量解析请求
type BatchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	service.BatchOutcome
	Recent []service.HistoryItem `json:"recent"`
}

func (s *Server) batch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess := s.session(c)
	out := s.deps.Downloader.Batch(c.UserContext(), sess, req.URLs, c.Get(fiber.HeaderUserAgent))
	status := fiber.StatusOK
	if out.Total == 0 {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(batchResponse{
		BatchOutcome: out,
		Recent:       s.deps.Downloader.History(c.UserContext(), sess).Items,
	})
}

func (s *Server) history(c *fiber.Ctx) error {
	sess := s.session(c)
	var notices []service.Notice
	if c.QueryBool("refresh") {
		notices = s.deps.Downloader.Refresh(c.UserContext(), sess)
	}
	view := s.deps.Downloader.History(c.UserContext(), sess)
	if len(notices) > 0 {
		view.Notices = append(notices, view.Notices...)
	}
	return c.JSON(view)
}

func (s *Server) clearHistory(c *fiber.Ctx) error {
	sess := s.session(c)
	notices, err := s.deps.Downloader.ClearHistory(c.UserContext(), sess)
	status := fiber.StatusOK
	if err != nil {
		status = statusFor(apperr.KindOf(err).String())
	}
	return c.Status(status).JSON(service.HistoryView{
		Items:   s.deps.Downloader.History(c.UserContext(), sess).Items,
		Notices: notices,
	})
}

// TriggerRequest 下载请求，filename 为空时按 title 与 quality 生成
type TriggerRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Quality  string `json:"quality"`
}

func (s *Server) trigger(c *fiber.Ctx) error {
	var req TriggerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" && req.Quality != "" {
		filename = trigger.FileName(req.Title, req.Quality)
	}

	action, notices := s.deps.Downloader.Trigger(strings.TrimSpace(req.URL), filename)
	if action == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      notices[0].Description,
			"error_kind": apperr.KindNoValidURL.String(),
			"notices":    notices,
		})
	}
	return c.JSON(fiber.Map{
		"action":  action,
		"notices": notices,
	})
}

func (s *Server) support(c *fiber.Ctx) error {
	link := s.deps.Downloader.SupportLink(c.Query("url"), c.Query("error"))
	if link == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "support contact is not configured"})
	}
	return c.JSON(fiber.Map{"url": link})
}

// requireAdmin 校验后台令牌，未配置令牌时后台接口不开放
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if s.cfg.AdminToken == "" || s.deps.Stats == nil {
		return fiber.ErrNotFound
	}
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
		return fiber.ErrUnauthorized
	}
	return c.Next()
}

func (s *Server) stats(c *fiber.Ctx) error {
	st, err := s.deps.Stats.Get(c.UserContext())
	if err != nil {
		pkglogger.Error().Err(err).Msg("获取统计失败")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperr.MessageOf(err)})
	}
	return c.JSON(st)
}

func (s *Server) statsCard(c *fiber.Ctx) error {
	data, err := s.deps.Stats.Card(c.UserContext(), s.deps.AppName, s.deps.Timezone)
	if err != nil {
		pkglogger.Error().Err(err).Msg("生成统计卡片失败")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperr.MessageOf(err)})
	}
	c.Type("png")
	return c.Send(data)
}
