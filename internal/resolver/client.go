// Package resolver 视频解析 API 客户端
package resolver

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/pkg/logger"
)

// Options 客户端参数
type Options struct {
	Endpoint   string
	Shape      Shape
	Timeout    time.Duration // 0 表示不设置
	BatchDelay time.Duration
	UserAgent  string
}

// Client 解析 API 客户端
type Client struct {
	endpoint   string
	shape      Shape
	batchDelay time.Duration
	httpClient *resty.Client
	// sleep 批量解析时的等待，测试中可替换
	sleep func(ctx context.Context, d time.Duration) error
}

var (
	instance *Client
	once     sync.Once
)

// GetClient 获取解析客户端单例
func GetClient() *Client {
	once.Do(func() {
		cfg := config.Get().Resolver
		instance = NewClient(Options{
			Endpoint:   cfg.Endpoint,
			Shape:      ParseShape(cfg.Shape),
			Timeout:    cfg.Timeout(),
			BatchDelay: cfg.BatchDelay(),
			UserAgent:  cfg.UserAgent,
		})
	})
	return instance
}

// NewClient 创建新的解析客户端
func NewClient(opts Options) *Client {
	client := resty.New()
	// 上游接口不做重试
	client.SetRetryCount(0)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	client.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	if opts.Shape == "" {
		opts.Shape = ShapeAuto
	}

	return &Client{
		endpoint:   strings.TrimSpace(opts.Endpoint),
		shape:      opts.Shape,
		batchDelay: opts.BatchDelay,
		httpClient: client,
		sleep:      sleepContext,
	}
}

// Resolve 请求解析接口，返回归一化结果
func (c *Client) Resolve(ctx context.Context, target string) (*Resolution, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, apperr.Validation("URL is required")
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("url", target).
		Get(c.endpoint)
	if err != nil {
		logger.Error().Err(err).Str("url", target).Msg("解析请求失败")
		return nil, apperr.Wrap(apperr.KindNetwork, "network error", err)
	}

	if !resp.IsSuccess() {
		msg := upstreamMessage(resp.Body())
		logger.Warn().
			Str("url", target).
			Int("status", resp.StatusCode()).
			Str("message", msg).
			Msg("解析接口返回错误")
		return nil, apperr.RequestFailed(resp.StatusCode(), msg)
	}

	res, err := Decode(c.shape, resp.Body())
	if err != nil {
		logger.Warn().Err(err).Str("url", target).Msg("解析接口返回格式无效")
		return nil, err
	}

	logger.Debug().
		Str("url", target).
		Str("title", res.Title).
		Int("links", len(res.Links)).
		Msg("解析成功")
	return res, nil
}

// BatchFunc 批量解析中每一项完成后的回调
type BatchFunc func(index int, target string, res *Resolution, err error)

// ResolveBatch 顺序解析多个链接，每两次请求之间固定等待，返回成功数
func (c *Client) ResolveBatch(ctx context.Context, targets []string, fn BatchFunc) (int, error) {
	succeeded := 0
	for i, target := range targets {
		res, err := c.Resolve(ctx, target)
		if err == nil {
			succeeded++
		}
		if fn != nil {
			fn(i, target, res, err)
		}

		if i < len(targets)-1 && c.batchDelay > 0 {
			if err := c.sleep(ctx, c.batchDelay); err != nil {
				return succeeded, err
			}
		}
	}
	return succeeded, nil
}

// upstreamMessage 尝试从错误响应中取出 message 字段
func upstreamMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
