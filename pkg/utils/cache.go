// Package utils 缓存工具
package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存，目前用于后台统计
var Cache = cache.New(time.Minute, 5*time.Minute)

// CacheGet 获取缓存
func CacheGet(key string) (interface{}, bool) {
	return Cache.Get(key)
}

// CacheDelete 删除缓存
func CacheDelete(key string) {
	Cache.Delete(key)
}

// CacheFlush 清空缓存
func CacheFlush() {
	Cache.Flush()
}

// CacheGetOrSet 命中直接返回，否则调用 fn 并缓存结果；fn 出错时不缓存
func CacheGetOrSet(key string, duration time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if val, found := Cache.Get(key); found {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return nil, err
	}

	Cache.Set(key, val, duration)
	return val, nil
}
