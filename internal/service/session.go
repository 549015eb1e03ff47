package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/smysle/fbdl-go/internal/database/models"
)

// Session 单个客户端的页面状态
type Session struct {
	ID string

	mu      sync.Mutex
	inputs  []string
	pending int
	result  *VideoResult
	errMsg  string
	recent  []models.DownloadRecord
	loaded  bool
	latest  uint64 // 最近一次解析请求的序号
	limit   int
}

// SessionView 会话状态快照
type SessionView struct {
	ID      string                  `json:"id"`
	Inputs  []string                `json:"inputs"`
	Pending bool                    `json:"pending"`
	Result  *VideoResult            `json:"result,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Recent  []models.DownloadRecord `json:"recent"`
}

func newSession(id string, limit int) *Session {
	if limit <= 0 {
		limit = 10
	}
	return &Session{
		ID:     id,
		inputs: []string{""},
		recent: []models.DownloadRecord{},
		limit:  limit,
	}
}

// NewSession 创建独立会话
func NewSession(limit int) *Session {
	return newSession(uuid.NewString(), limit)
}

// View 返回当前状态快照
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputs := make([]string, len(s.inputs))
	copy(inputs, s.inputs)
	recent := make([]models.DownloadRecord, len(s.recent))
	copy(recent, s.recent)

	return SessionView{
		ID:      s.ID,
		Inputs:  inputs,
		Pending: s.pending > 0,
		Result:  s.result,
		Error:   s.errMsg,
		Recent:  recent,
	}
}

// begin 开始一次解析，返回请求序号
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.pending++
	s.result = nil
	s.errMsg = ""
	return s.latest
}

// finish 结束解析；若已有更新的请求则丢弃本次结果并返回 false
func (s *Session) finish(gen uint64, result *VideoResult, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending > 0 {
		s.pending--
	}
	if gen != s.latest {
		return false
	}
	s.result = result
	s.errMsg = errMsg
	return true
}

// fail 本地校验失败，同时让进行中的请求失效
func (s *Session) fail(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.result = nil
	s.errMsg = errMsg
}

func (s *Session) setPending(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.pending++
	} else if s.pending > 0 {
		s.pending--
	}
}

// pushRecent 把新记录放到最前，超出上限的丢弃
func (s *Session) pushRecent(rec models.DownloadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append([]models.DownloadRecord{rec}, s.recent...)
	if len(s.recent) > s.limit {
		s.recent = s.recent[:s.limit]
	}
}

func (s *Session) setRecent(records []models.DownloadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	s.recent = records
	s.loaded = true
}

func (s *Session) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Recent 当前缓存的最近记录
func (s *Session) Recent() []models.DownloadRecord {
	return s.View().Recent
}

// Inputs 批量输入框内容
func (s *Session) Inputs() []string {
	return s.View().Inputs
}

// AddInput 增加一个输入框
func (s *Session) AddInput(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inputs) == 1 && s.inputs[0] == "" {
		s.inputs[0] = value
		return
	}
	s.inputs = append(s.inputs, value)
}

// UpdateInput 修改第 i 个输入框
func (s *Session) UpdateInput(i int, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.inputs) {
		return false
	}
	s.inputs[i] = value
	return true
}

// RemoveInput 删除第 i 个输入框，至少保留一个
func (s *Session) RemoveInput(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.inputs) {
		return false
	}
	if len(s.inputs) == 1 {
		s.inputs[0] = ""
		return true
	}
	s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
	return true
}

// ResetInputs 恢复为一个空输入框
func (s *Session) ResetInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = []string{""}
}

// SessionStore 会话存储，过期自动清理
type SessionStore struct {
	cache *cache.Cache
	limit int
	mu    sync.Mutex
}

// NewSessionStore 创建会话存储
func NewSessionStore(ttl time.Duration, recentLimit int) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, 2*ttl),
		limit: recentLimit,
	}
}

// Get 获取会话，不存在时创建；id 为空时生成新 ID
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if v, ok := st.cache.Get(id); ok {
		sess := v.(*Session)
		// 续期
		st.cache.SetDefault(id, sess)
		return sess
	}

	sess := newSession(id, st.limit)
	st.cache.SetDefault(id, sess)
	return sess
}

// Count 当前会话数
func (st *SessionStore) Count() int {
	return st.cache.ItemCount()
}

// Each 遍历所有未过期的会话
func (st *SessionStore) Each(fn func(*Session)) {
	for _, item := range st.cache.Items() {
		if sess, ok := item.Object.(*Session); ok {
			fn(sess)
		}
	}
}
