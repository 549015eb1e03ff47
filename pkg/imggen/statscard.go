// Package imggen 图片生成模块
package imggen

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Metric 卡片上的一行统计
type Metric struct {
	Label string
	Value string
}

// StatsCard 后台统计卡片
type StatsCard struct {
	Title       string
	Subtitle    string
	Metrics     []Metric
	GeneratedAt time.Time
	Footer      string
}

const (
	cardWidth    = 640
	headerHeight = 120
	rowHeight    = 64
	footerHeight = 56
	padding      = 24
	maxMetrics   = 8
)

var (
	bgTop       = color.RGBA{24, 119, 242, 255} // Facebook 蓝
	bgBottom    = color.RGBA{18, 22, 36, 255}
	rowColor    = color.RGBA{255, 255, 255, 28}
	textColor   = color.RGBA{255, 255, 255, 255}
	mutedColor  = color.RGBA{190, 198, 214, 255}
	accentColor = color.RGBA{66, 183, 42, 255}
)

var (
	fontOnce  sync.Once
	fontErr   error
	regularTT *truetype.Font
	boldTT    *truetype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		if regularTT, fontErr = truetype.Parse(goregular.TTF); fontErr != nil {
			return
		}
		boldTT, fontErr = truetype.Parse(gobold.TTF)
	})
	return fontErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Size 按统计条数计算图片尺寸
func (c StatsCard) Size() (int, int) {
	n := len(c.Metrics)
	if n > maxMetrics {
		n = maxMetrics
	}
	return cardWidth, headerHeight + n*rowHeight + footerHeight + padding
}

// GenerateStatsCard 生成统计卡片 PNG
func GenerateStatsCard(c StatsCard) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}

	width, height := c.Size()
	dc := gg.NewContext(width, height)

	drawGradient(dc, width, height)
	drawHeader(dc, width, c)

	y := float64(headerHeight)
	for i, m := range c.Metrics {
		if i >= maxMetrics {
			break
		}
		drawMetric(dc, width, y, m)
		y += rowHeight
	}

	drawFooter(dc, width, height, c)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func drawGradient(dc *gg.Context, width, height int) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(height))
	grad.AddColorStop(0, bgTop)
	grad.AddColorStop(0.45, bgBottom)
	grad.AddColorStop(1, bgBottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()
}

func drawHeader(dc *gg.Context, width int, c StatsCard) {
	dc.SetFontFace(face(boldTT, 30))
	dc.SetColor(textColor)
	dc.DrawStringAnchored(c.Title, float64(width)/2, 44, 0.5, 0.5)

	if c.Subtitle != "" {
		dc.SetFontFace(face(regularTT, 16))
		dc.SetColor(mutedColor)
		dc.DrawStringAnchored(c.Subtitle, float64(width)/2, 80, 0.5, 0.5)
	}

	dc.SetColor(accentColor)
	dc.SetLineWidth(2)
	dc.DrawLine(padding*2, 104, float64(width-padding*2), 104)
	dc.Stroke()
}

func drawMetric(dc *gg.Context, width int, y float64, m Metric) {
	x := float64(padding)
	w := float64(width - padding*2)
	h := float64(rowHeight - 12)

	dc.SetColor(rowColor)
	dc.DrawRoundedRectangle(x, y+6, w, h, 10)
	dc.Fill()

	mid := y + 6 + h/2
	dc.SetFontFace(face(regularTT, 18))
	dc.SetColor(mutedColor)
	dc.DrawStringAnchored(m.Label, x+20, mid, 0, 0.5)

	dc.SetFontFace(face(boldTT, 24))
	dc.SetColor(textColor)
	dc.DrawStringAnchored(m.Value, x+w-20, mid, 1, 0.5)
}

func drawFooter(dc *gg.Context, width, height int, c StatsCard) {
	text := "Generated " + c.GeneratedAt.Format("2006-01-02 15:04")
	if c.Footer != "" {
		text += " | " + c.Footer
	}
	dc.SetFontFace(face(regularTT, 14))
	dc.SetColor(mutedColor)
	dc.DrawStringAnchored(text, float64(width)/2, float64(height)-footerHeight/2, 0.5, 0.5)
}
