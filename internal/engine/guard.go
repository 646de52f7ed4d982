package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockPrefix = "newsbot:job-lock:"

// RunGuard 同一个任务同一时刻只允许一次运行
type RunGuard interface {
	// Acquire ok 为 false 表示已有运行中的实例
	Acquire(ctx context.Context, job string) (release func(), ok bool, err error)
}

// NewRunGuard 配置了 redis 时跨实例加锁，否则只在进程内互斥
func NewRunGuard(rdb *redis.Client, ttl time.Duration) RunGuard {
	if rdb == nil {
		return &localGuard{running: make(map[string]bool)}
	}
	if ttl <= 0 {
		ttl = DefaultTimeout + 5*time.Minute
	}
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

// RedisGuard SETNX 加锁，value 为本次运行的 token，释放时校验 token
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (g *RedisGuard) Acquire(ctx context.Context, job string) (func(), bool, error) {
	key := lockPrefix + job
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		// 任务 ctx 可能已超时，释放用独立的 ctx
		c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		releaseScript.Run(c, g.rdb, []string{key}, token)
	}
	return release, true, nil
}

type localGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func (g *localGuard) Acquire(ctx context.Context, job string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[job] {
		return func() {}, false, nil
	}
	g.running[job] = true
	return func() {
		g.mu.Lock()
		delete(g.running, job)
		g.mu.Unlock()
	}, true, nil
}
