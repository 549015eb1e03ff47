package resolver

import (
	"encoding/json"
	"strings"

	"github.com/smysle/fbdl-go/internal/apperr"
)

// Shape 上游返回格式
type Shape string

const (
	// ShapePair {status, data:{low, high, title, thumbnail}}
	ShapePair Shape = "pair"
	// ShapeDownloads {status, video:{title, thumbnail, downloads:[{quality, downloadUrl}], creator}}
	ShapeDownloads Shape = "downloads"
	// ShapeAuto 根据返回内容自动选择
	ShapeAuto Shape = "auto"
)

const invalidFormat = "invalid response format"

// Link 单个清晰度的下载链接
type Link struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// Resolution 归一化后的解析结果
type Resolution struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Creator   string `json:"creator,omitempty"`
	Links     []Link `json:"links"`
}

// Low 标清链接
func (r *Resolution) Low() string {
	if u := r.find(lowLabels...); u != "" {
		return u
	}
	// 只有一个链接时留给 High
	if len(r.Links) < 2 {
		return ""
	}
	for i := len(r.Links) - 1; i >= 0; i-- {
		if !r.Links[i].is(highLabels...) {
			return r.Links[i].URL
		}
	}
	return ""
}

// High 高清链接，标为标清的链接不会当作高清返回
func (r *Resolution) High() string {
	if u := r.find(highLabels...); u != "" {
		return u
	}
	for _, l := range r.Links {
		if !l.is(lowLabels...) {
			return l.URL
		}
	}
	return ""
}

var (
	lowLabels  = []string{"low", "sd", "360p", "480p"}
	highLabels = []string{"high", "hd", "720p", "1080p"}
)

func (r *Resolution) find(names ...string) string {
	for _, l := range r.Links {
		if l.is(names...) {
			return l.URL
		}
	}
	return ""
}

func (l Link) is(names ...string) bool {
	q := strings.ToLower(strings.TrimSpace(l.Quality))
	for _, n := range names {
		if q == n || strings.HasPrefix(q, n+" ") || strings.Contains(q, "("+n+")") {
			return true
		}
	}
	return false
}

// HasLink 至少有一个可用链接
func (r *Resolution) HasLink() bool {
	for _, l := range r.Links {
		if l.URL != "" {
			return true
		}
	}
	return false
}

// adapter 把某种上游格式转换为 Resolution
type adapter func(body []byte) (*Resolution, error)

var adapters = map[Shape]adapter{
	ShapePair:      decodePair,
	ShapeDownloads: decodeDownloads,
	ShapeAuto:      decodeAuto,
}

// ParseShape 解析配置中的格式名，未知值按 auto 处理
func ParseShape(s string) Shape {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapePair:
		return ShapePair
	case ShapeDownloads:
		return ShapeDownloads
	default:
		return ShapeAuto
	}
}

// Decode 按指定格式解析响应体
func Decode(shape Shape, body []byte) (*Resolution, error) {
	fn, ok := adapters[shape]
	if !ok {
		fn = decodeAuto
	}
	return fn(body)
}

type pairEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Low       string `json:"low"`
		High      string `json:"high"`
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
	} `json:"data"`
}

func decodePair(body []byte) (*Resolution, error) {
	var env pairEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidResponse, invalidFormat, err)
	}
	if !env.Status || env.Data == nil || env.Data.Low == "" || env.Data.High == "" {
		return nil, invalidResponse(env.Message)
	}
	return &Resolution{
		Title:     env.Data.Title,
		Thumbnail: env.Data.Thumbnail,
		Links: []Link{
			{Quality: "high", URL: env.Data.High},
			{Quality: "low", URL: env.Data.Low},
		},
	}, nil
}

type downloadsEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Video   *struct {
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
		Creator   string `json:"creator"`
		Downloads []struct {
			Quality     string `json:"quality"`
			DownloadURL string `json:"downloadUrl"`
		} `json:"downloads"`
	} `json:"video"`
}

func decodeDownloads(body []byte) (*Resolution, error) {
	var env downloadsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidResponse, invalidFormat, err)
	}
	if !env.Status || env.Video == nil {
		return nil, invalidResponse(env.Message)
	}

	res := &Resolution{
		Title:     env.Video.Title,
		Thumbnail: env.Video.Thumbnail,
		Creator:   env.Video.Creator,
	}
	for _, d := range env.Video.Downloads {
		if d.DownloadURL == "" {
			continue
		}
		res.Links = append(res.Links, Link{Quality: d.Quality, URL: d.DownloadURL})
	}
	if !res.HasLink() {
		return nil, invalidResponse(env.Message)
	}
	return res, nil
}

func decodeAuto(body []byte) (*Resolution, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidResponse, invalidFormat, err)
	}
	if _, ok := probe["video"]; ok {
		return decodeDownloads(body)
	}
	return decodePair(body)
}

func invalidResponse(upstream string) error {
	if upstream != "" {
		return apperr.New(apperr.KindInvalidResponse, upstream)
	}
	return apperr.New(apperr.KindInvalidResponse, invalidFormat)
}
