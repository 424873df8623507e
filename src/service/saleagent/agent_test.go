package saleagent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

type fakeSettler struct {
	calls atomic.Int32
	fn    func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error)
}

func (f *fakeSettler) Settle(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
	f.calls.Add(1)
	return f.fn(ctx, sale)
}

func accepting(txid string) *fakeSettler {
	return &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		return &types.SettleResult{Accepted: true, Txid: txid}, nil
	}}
}

type stateWrite struct {
	key   string
	state types.ItemState
}

type fakeStore struct {
	mu     sync.Mutex
	writes []stateWrite
}

func (s *fakeStore) MarkItemState(ctx context.Context, slug, id string, state types.ItemState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, stateWrite{key: slug + ":" + id, state: state})
	return nil
}

func (s *fakeStore) all() []stateWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stateWrite(nil), s.writes...)
}

func decode(t *testing.T, resp Response) types.SaleDecision {
	t.Helper()
	var d types.SaleDecision
	require.NoError(t, json.Unmarshal(resp.Body, &d))
	return d
}

var frog0 = Key{CollectionSlug: "frogs", InscriptionID: "abci0"}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "frogs:abci0", frog0.String())
}

func TestOnlyOneBuyerWins(t *testing.T) {
	settler := accepting("deadbeef")
	store := &fakeStore{}
	reg := NewRegistry(settler, store, time.Second)
	defer reg.Stop()

	const buyers = 20
	resps := make([]Response, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := reg.Get(frog0).Submit(context.Background(), fmt.Sprintf("cHNidP8buyer%d", i))
			assert.NoError(t, err)
			resps[i] = resp
		}(i)
	}
	wg.Wait()

	var accepted, conflicts int
	for _, resp := range resps {
		switch resp.Status {
		case http.StatusOK:
			accepted++
			d := decode(t, resp)
			assert.True(t, d.Accepted)
			assert.Equal(t, "deadbeef", d.Txid)
			assert.NotEmpty(t, d.DecisionID)
		case http.StatusConflict:
			conflicts++
			d := decode(t, resp)
			assert.False(t, d.Accepted)
			assert.Equal(t, msgAlreadyDecided, d.Error)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, buyers-1, conflicts)
	assert.Equal(t, int32(1), settler.calls.Load())
	assert.Equal(t, []stateWrite{{key: "frogs:abci0", state: types.ItemStatePending}}, store.all())
	assert.Equal(t, StateCommitted, reg.Get(frog0).State())
	assert.Equal(t, 1, reg.Len())
}

func TestReplaySamePayload(t *testing.T) {
	settler := accepting("deadbeef")
	store := &fakeStore{}
	reg := NewRegistry(settler, store, time.Second)
	defer reg.Stop()

	first, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8same")
	require.NoError(t, err)
	second, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8same")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, first.Status)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), settler.calls.Load())
	assert.Len(t, store.all(), 1)
}

func TestSettleTimeoutRejectsAndReleases(t *testing.T) {
	var accept atomic.Bool
	settler := &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		if accept.Load() {
			return &types.SettleResult{Accepted: true, Txid: "cafe"}, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	store := &fakeStore{}
	reg := NewRegistry(settler, store, 30*time.Millisecond)
	defer reg.Stop()

	resp, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8slow")
	require.NoError(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, resp.Status)
	assert.False(t, decode(t, resp).Accepted)
	assert.Equal(t, StateRejected, reg.Get(frog0).State())

	// 相同 payload 重放原拒绝
	replay, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8slow")
	require.NoError(t, err)
	assert.Equal(t, resp, replay)
	assert.Equal(t, int32(1), settler.calls.Load())

	// 铭文已释放, 新的 payload 重新结算
	accept.Store(true)
	resp, err = reg.Get(frog0).Submit(context.Background(), "cHNidP8fresh")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(2), settler.calls.Load())
	assert.Equal(t, []stateWrite{
		{key: "frogs:abci0", state: types.ItemStateAvailable},
		{key: "frogs:abci0", state: types.ItemStatePending},
	}, store.all())
}

func TestSettleIgnoringContextStillTimesOut(t *testing.T) {
	stuck := make(chan struct{})
	defer close(stuck)

	var accept atomic.Bool
	settler := &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		if accept.Load() {
			return &types.SettleResult{Accepted: true, Txid: "cafe"}, nil
		}
		<-stuck
		return nil, nil
	}}
	store := &fakeStore{}
	reg := NewRegistry(settler, store, 30*time.Millisecond)
	defer reg.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	resp, err := reg.Get(frog0).Submit(ctx, "cHNidP8stuck")
	require.NoError(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, resp.Status)
	d := decode(t, resp)
	assert.False(t, d.Accepted)
	assert.Equal(t, 20004, d.Code)
	assert.Equal(t, StateRejected, reg.Get(frog0).State())

	// agent 没有被卡住的结算拖住, 可以继续处理新的提交
	accept.Store(true)
	resp, err = reg.Get(frog0).Submit(ctx, "cHNidP8fresh")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, StateCommitted, reg.Get(frog0).State())
}

func TestHandleWhileDecidingConflicts(t *testing.T) {
	settler := accepting("deadbeef")
	reg := NewRegistry(settler, &fakeStore{}, time.Second)
	a := newAgent(frog0, reg)
	a.setState(StateDeciding)

	resp := a.handle("cHNidP8other")
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, msgSaleInProgress, decode(t, resp).Error)
	assert.Equal(t, StateDeciding, a.State())
	assert.Equal(t, int32(0), settler.calls.Load())
}

func TestSettleDeclined(t *testing.T) {
	settler := &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		return &types.SettleResult{Accepted: false, Details: map[string]interface{}{"reason": "fee too low"}}, nil
	}}
	reg := NewRegistry(settler, &fakeStore{}, time.Second)
	defer reg.Stop()

	resp, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8lowfee")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	d := decode(t, resp)
	assert.False(t, d.Accepted)
	assert.Equal(t, msgSaleDeclined, d.Error)
	assert.Equal(t, "fee too low", d.Details["reason"])
}

func TestSettlePanicLeavesDeciding(t *testing.T) {
	settler := &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		panic("boom")
	}}
	reg := NewRegistry(settler, &fakeStore{}, time.Second)
	defer reg.Stop()

	resp, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8panic")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Equal(t, StateRejected, reg.Get(frog0).State())
}

func TestDifferentKeysSettleInParallel(t *testing.T) {
	release := make(chan struct{})
	settler := &fakeSettler{fn: func(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
		<-release
		return &types.SettleResult{Accepted: true, Txid: sale.InscriptionID}, nil
	}}
	reg := NewRegistry(settler, &fakeStore{}, time.Second)
	defer reg.Stop()

	var wg sync.WaitGroup
	for _, id := range []string{"abci0", "abci1"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := reg.Get(Key{CollectionSlug: "frogs", InscriptionID: id}).Submit(context.Background(), "cHNidP8"+id)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
		}(id)
	}

	// 两个铭文的结算同时在进行
	require.Eventually(t, func() bool { return settler.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, 2, reg.Len())
}

func TestCancelledCallerIsSkipped(t *testing.T) {
	settler := accepting("deadbeef")
	reg := NewRegistry(settler, &fakeStore{}, time.Second)
	defer reg.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Get(frog0).Submit(ctx, "cHNidP8gone")
	assert.ErrorIs(t, err, context.Canceled)

	resp, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8next")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(1), settler.calls.Load())
}

func TestRegistryStop(t *testing.T) {
	reg := NewRegistry(accepting("x"), &fakeStore{}, time.Second)
	a := reg.Get(frog0)
	reg.Stop()
	reg.Stop()

	assert.Nil(t, reg.Get(frog0))
	_, err := a.Submit(context.Background(), "cHNidP8late")
	assert.Error(t, err)
}

type recordingPublisher struct {
	events chan types.SettlementEvent
}

func (p *recordingPublisher) PublishSettlement(ctx context.Context, event types.SettlementEvent) error {
	p.events <- event
	return nil
}

func TestCommittedSalePublishesSettlement(t *testing.T) {
	pub := &recordingPublisher{events: make(chan types.SettlementEvent, 1)}
	reg := NewRegistry(accepting("deadbeef"), &fakeStore{}, time.Second, WithPublisher(pub), WithMailboxSize(4))
	defer reg.Stop()

	resp, err := reg.Get(frog0).Submit(context.Background(), "cHNidP8pub")
	require.NoError(t, err)
	d := decode(t, resp)

	select {
	case ev := <-pub.events:
		assert.Equal(t, d.DecisionID, ev.DecisionID)
		assert.Equal(t, "deadbeef", ev.Txid)
		assert.Equal(t, "abci0", ev.InscriptionID)
	case <-time.After(time.Second):
		t.Fatal("settlement not published")
	}
}
