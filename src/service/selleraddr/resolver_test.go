package selleraddr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
)

type fakeFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	results []error // 第 i 次调用的错误, 超出范围时成功
	addr    string
}

func (f *fakeFetcher) FetchAddress(ctx context.Context) (string, error) {
	n := int(f.calls.Add(1))
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if n <= len(f.results) && f.results[n-1] != nil {
		return "", f.results[n-1]
	}
	return f.addr, nil
}

func resolveConcurrently(r *Resolver, n int) ([]string, []error) {
	vals := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vals[i], errs[i] = r.Resolve(context.Background())
		}(i)
	}
	wg.Wait()
	return vals, errs
}

func TestResolveSingleFlight(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{}), addr: "bc1pseller"}
	r := New(f, time.Second)

	done := make(chan struct{})
	var vals []string
	var errs []error
	go func() {
		vals, errs = resolveConcurrently(r, 50)
		close(done)
	}()

	// 等待第一次远程调用发出后再放行, 保证所有调用方在 in-flight 期间到达
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	<-done

	assert.Equal(t, int32(1), f.calls.Load())
	for i := range vals {
		assert.NoError(t, errs[i])
		assert.Equal(t, "bc1pseller", vals[i])
	}

	// 已缓存: 不再触发远程调用
	addr, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1pseller", addr)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, int64(1), r.Fetches())

	cached, ok := r.Cached()
	assert.True(t, ok)
	assert.Equal(t, "bc1pseller", cached)
}

func TestResolveFailureIsSharedThenRetried(t *testing.T) {
	boom := errcode.NewUpstreamErr("wallet locked")
	f := &fakeFetcher{release: make(chan struct{}), results: []error{boom}, addr: "bc1pseller"}
	r := New(f, time.Second)

	done := make(chan struct{})
	var errs []error
	go func() {
		_, errs = resolveConcurrently(r, 10)
		close(done)
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	<-done

	assert.Equal(t, int32(1), f.calls.Load())
	for _, err := range errs {
		assert.True(t, errors.Is(err, boom))
	}
	_, ok := r.Cached()
	assert.False(t, ok)

	// 失败后下一次调用重新发起且只发起一次
	addr, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1pseller", addr)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResolveTimeoutClearsInFlight(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{}), addr: "bc1pseller"}
	r := New(f, 20*time.Millisecond)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcode.ErrUpstreamTimeout))

	close(f.release)
	addr, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1pseller", addr)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResolveCallerCancelDoesNotCancelAttempt(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{}), addr: "bc1pseller"}
	r := New(f, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.release)
	addr, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1pseller", addr)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestResolveEmptyAddressIsFailure(t *testing.T) {
	f := &fakeFetcher{}
	r := New(f, time.Second)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Invalid sell address response", errcode.ParseErr(err).Msg)
}
