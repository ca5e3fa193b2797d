// Package ratelimit 按 key 分配的令牌桶
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// Pool 惰性创建 limiter，空闲超过 ttl 的条目由 Sweep 回收
type Pool struct {
	mu    sync.Mutex
	m     map[string]*entry
	rps   rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

func NewPool(rps float64, burst int, ttl time.Duration) *Pool {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Pool{
		m:     make(map[string]*entry),
		rps:   rate.Limit(rps),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get 取 key 对应的 limiter
func (p *Pool) Get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.m[key]; ok {
		e.lastSeen = p.now()
		return e.l
	}
	l := rate.NewLimiter(p.rps, p.burst)
	p.m[key] = &entry{l: l, lastSeen: p.now()}
	return l
}

// Allow 非阻塞判断
func (p *Pool) Allow(key string) bool {
	return p.Get(key).Allow()
}

// NewLimiter 单独的 limiter，websocket 会话使用
func (p *Pool) NewLimiter() *rate.Limiter {
	return rate.NewLimiter(p.rps, p.burst)
}

// Sweep 回收空闲条目，返回回收数量
func (p *Pool) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.ttl)
	n := 0
	for k, e := range p.m {
		if e.lastSeen.Before(cutoff) {
			delete(p.m, k)
			n++
		}
	}
	return n
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}
