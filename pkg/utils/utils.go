// Package utils 工具函数
package utils

import (
	"strconv"
	"sync"
	"time"
)

var (
	locMu     sync.Mutex
	locations = map[string]*time.Location{}
)

// Location 按名称加载时区，名称为空或无效时使用 UTC
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	locMu.Lock()
	defer locMu.Unlock()
	if loc, ok := locations[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	locations[name] = loc
	return loc
}

// FormatTime 按时区格式化时间
func FormatTime(t time.Time, tz, layout string) string {
	return t.In(Location(tz)).Format(layout)
}

// TimeAgo 相对时间描述，用于最近下载列表
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}

// FormatCount 千分位格式化
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
