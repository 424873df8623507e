package selleraddr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
)

// Fetcher 远程获取卖家地址的能力, 由签名服务客户端实现
type Fetcher interface {
	FetchAddress(ctx context.Context) (string, error)
}

// call 一次进行中的解析, done 关闭后 val/err 只读
type call struct {
	done chan struct{}
	val  string
	err  error
}

// Resolver 进程级卖家地址缓存
// 状态: Empty -> InFlight(call) -> Resolved(value)
// 解析失败时回到 Empty, 下一个调用方重新发起; 成功后永久缓存直到进程重启
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration

	value atomic.Pointer[string] // 解析成功后只写一次

	mu       sync.Mutex
	inflight *call
	fetches  atomic.Int64
}

// New 创建地址解析器, timeout 约束每一次远程解析
func New(fetcher Fetcher, timeout time.Duration) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		timeout: timeout,
	}
}

// Resolve 返回卖家地址
// 1. 已解析: 直接返回, 无锁
// 2. 有进行中的解析: 挂到该次解析上等待结果
// 3. 否则发起新的解析并等待
// 调用方的 ctx 只控制自己的等待, 不会取消共享的那次解析
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if v := r.value.Load(); v != nil {
		return *v, nil
	}

	r.mu.Lock()
	if v := r.value.Load(); v != nil {
		r.mu.Unlock()
		return *v, nil
	}
	c := r.inflight
	if c == nil {
		c = &call{done: make(chan struct{})}
		r.inflight = c
		threading.GoSafe(func() {
			r.run(c)
		})
	}
	r.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "wait seller address")
	}
}

// Cached 返回已缓存的地址, 未解析时 ok=false
func (r *Resolver) Cached() (string, bool) {
	if v := r.value.Load(); v != nil {
		return *v, true
	}
	return "", false
}

// Fetches 远程解析的累计次数
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

func (r *Resolver) run(c *call) {
	defer func() {
		if p := recover(); p != nil {
			c.err = errcode.NewUpstreamErr(fmt.Sprintf("seller address fetch panic: %v", p))
		}
		r.finish(c)
	}()

	r.fetches.Add(1)
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c.val, c.err = r.fetcher.FetchAddress(ctx)
	if c.err == nil && c.val == "" {
		c.err = errcode.NewUpstreamErr("Invalid sell address response")
	}
	if c.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.err = errors.Wrap(errcode.ErrUpstreamTimeout, "seller address")
	}
}

// finish 提交状态迁移并唤醒所有等待者
func (r *Resolver) finish(c *call) {
	r.mu.Lock()
	if c.err == nil {
		v := c.val
		r.value.Store(&v)
	} else {
		c.val = ""
		xzap.WithContext(context.Background()).Warn("failed on resolve seller address", zap.Error(c.err))
	}
	r.inflight = nil
	r.mu.Unlock()

	close(c.done)
}
