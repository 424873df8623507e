package saleagent

import (
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/threading"
)

const defaultMailboxSize = 64

// Registry 按 (collection, inscription) 懒创建 sale agent
// 同一个 key 在进程生命周期内只对应一个 agent
type Registry struct {
	settler     Settler
	store       StateWriter
	publisher   Publisher
	timeout     time.Duration
	mailboxSize int

	mu      sync.Mutex
	agents  map[Key]*Agent
	stopped bool
}

type Option func(r *Registry)

// WithPublisher 成交后推送事件
func WithPublisher(p Publisher) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// WithMailboxSize 每个 agent 的 mailbox 容量
func WithMailboxSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.mailboxSize = n
		}
	}
}

func NewRegistry(settler Settler, store StateWriter, settleTimeout time.Duration, opts ...Option) *Registry {
	r := &Registry{
		settler:     settler,
		store:       store,
		timeout:     settleTimeout,
		mailboxSize: defaultMailboxSize,
		agents:      make(map[Key]*Agent),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get 返回 key 对应的 agent, 不存在时创建并启动
// Stop 之后返回 nil
func (r *Registry) Get(key Key) *Agent {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	if a, ok := r.agents[key]; ok {
		return a
	}

	a := newAgent(key, r)
	r.agents[key] = a
	threading.GoSafe(a.loop)
	return a
}

// Len 已创建的 agent 数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}

// Stop 停止所有 agent 的处理循环, 正在进行的结算会执行完
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	for _, a := range r.agents {
		close(a.quit)
	}
}
