package imggen

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

func TestGenerateStatsCard(t *testing.T) {
	card := StatsCard{
		Title:    "FB Video Grabber",
		Subtitle: "Admin statistics",
		Metrics: []Metric{
			{Label: "Visits this week", Value: "12"},
			{Label: "Downloads this week", Value: "7"},
			{Label: "Total downloads", Value: "1,024"},
		},
		GeneratedAt: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		Footer:      "fbdl",
	}

	data, err := GenerateStatsCard(card)
	if err != nil {
		t.Fatalf("GenerateStatsCard() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出不是合法的 PNG: %v", err)
	}
	w, h := card.Size()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Errorf("图片尺寸 = %v, want %dx%d", img.Bounds(), w, h)
	}
}

func TestStatsCard_SizeCapsMetrics(t *testing.T) {
	var metrics []Metric
	for i := 0; i < 20; i++ {
		metrics = append(metrics, Metric{Label: "x", Value: "1"})
	}
	_, h := StatsCard{Metrics: metrics}.Size()
	_, hMax := StatsCard{Metrics: metrics[:maxMetrics]}.Size()
	if h != hMax {
		t.Errorf("超过上限的条目不应该增加高度: %d != %d", h, hMax)
	}
}
