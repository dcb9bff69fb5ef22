package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/enteacher-core/internal/utils"
	"github.com/go-redis/redis/v8"
)

// codeRetention 验证码过期后继续保留的时间，用于区分"已过期"和"未获取"
const codeRetention = 10 * time.Minute

// CodeEntry 已发送的验证码
type CodeEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore 验证码存储
type CodeStore interface {
	Save(ctx context.Context, phone string, entry CodeEntry) error
	Load(ctx context.Context, phone string) (CodeEntry, bool, error)
	Delete(ctx context.Context, phone string) error
}

// NewCodeStore 连接了 Redis 时存 Redis，否则存进程内存
func NewCodeStore(cache *utils.Cache) CodeStore {
	if cache.Enabled() {
		return &redisCodeStore{cache: cache}
	}
	return NewMemoryCodeStore()
}

// MemoryCodeStore 进程内验证码存储
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]CodeEntry
}

// NewMemoryCodeStore 创建进程内验证码存储
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]CodeEntry)}
}

func (s *MemoryCodeStore) Save(_ context.Context, phone string, entry CodeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = entry
	return nil
}

func (s *MemoryCodeStore) Load(_ context.Context, phone string) (CodeEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[phone]
	return entry, ok, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}

type redisCodeStore struct {
	cache *utils.Cache
}

func codeKey(phone string) string {
	return utils.GetCacheKey("auth", "code", phone)
}

func (s *redisCodeStore) Save(ctx context.Context, phone string, entry CodeEntry) error {
	ttl := time.Until(entry.ExpiresAt) + codeRetention
	return s.cache.Set(ctx, codeKey(phone), entry, ttl)
}

func (s *redisCodeStore) Load(ctx context.Context, phone string) (CodeEntry, bool, error) {
	var entry CodeEntry
	if err := s.cache.Get(ctx, codeKey(phone), &entry); err != nil {
		if errors.Is(err, redis.Nil) {
			return CodeEntry{}, false, nil
		}
		return CodeEntry{}, false, err
	}
	return entry, true, nil
}

func (s *redisCodeStore) Delete(ctx context.Context, phone string) error {
	return s.cache.Delete(ctx, codeKey(phone))
}
