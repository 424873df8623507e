package saleagent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/common/utils"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

const (
	markStateAttempts = 3
	markStateInterval = 200 * time.Millisecond

	msgAlreadyDecided = "Inscription is already sold"
	msgSaleInProgress = "Inscription sale is in progress"
	msgSaleDeclined   = "Sale was declined by the signing agent"
)

var errAgentStopped = errcode.ErrUnexpected.WithMsg("sale agent stopped")

// Settler 结算能力, 由签名服务客户端实现
type Settler interface {
	Settle(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error)
}

// StateWriter 铭文状态写入, 由 dao 实现
type StateWriter interface {
	MarkItemState(ctx context.Context, collectionSlug, inscriptionID string, state types.ItemState) error
}

// Publisher 成交事件的下游通知, 可选
type Publisher interface {
	PublishSettlement(ctx context.Context, event types.SettlementEvent) error
}

// State sale agent 的状态
type State int32

const (
	StateAvailable State = iota
	StateDeciding
	StateCommitted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateDeciding:
		return "deciding"
	case StateCommitted:
		return "committed"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Key sale agent 的寻址键
type Key struct {
	CollectionSlug string
	InscriptionID  string
}

func (k Key) String() string {
	return k.CollectionSlug + ":" + k.InscriptionID
}

// Response agent 对一次提交的应答, Body 为 JSON
type Response struct {
	Status int
	Body   []byte
}

type envelope struct {
	ctx     context.Context
	payload string
	reply   chan Response
}

// Agent 单个铭文的销售 actor
// 所有提交经由 mailbox 串行处理, 因此同一铭文不会有两个买家同时成交
// state/payloadHash/decision 只由 loop 所在的 goroutine 读写
type Agent struct {
	key       Key
	settler   Settler
	store     StateWriter
	publisher Publisher
	timeout   time.Duration

	mailbox chan envelope
	quit    chan struct{}

	state       State
	payloadHash string
	decision    Response

	stateView atomic.Int32 // state 的只读镜像, 供外部观察
}

func newAgent(key Key, r *Registry) *Agent {
	return &Agent{
		key:       key,
		settler:   r.settler,
		store:     r.store,
		publisher: r.publisher,
		timeout:   r.timeout,
		mailbox:   make(chan envelope, r.mailboxSize),
		quit:      make(chan struct{}),
	}
}

// Key 返回 agent 绑定的铭文
func (a *Agent) Key() Key {
	return a.key
}

// State 返回当前状态的快照
func (a *Agent) State() State {
	return State(a.stateView.Load())
}

// Submit 提交买家签名的 PSBT 并等待决策
// 排队期间调用方取消时返回 ctx 错误, 该请求不会再被处理
func (a *Agent) Submit(ctx context.Context, signedPsbt string) (Response, error) {
	env := envelope{ctx: ctx, payload: signedPsbt, reply: make(chan Response, 1)}

	select {
	case <-a.quit:
		return Response{}, errAgentStopped
	default:
	}

	select {
	case a.mailbox <- env:
	case <-a.quit:
		return Response{}, errAgentStopped
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case resp := <-env.reply:
		return resp, nil
	case <-a.quit:
		return Response{}, errAgentStopped
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// loop 按到达顺序逐个处理 mailbox 中的提交
func (a *Agent) loop() {
	for {
		select {
		case <-a.quit:
			return
		case env := <-a.mailbox:
			if env.ctx.Err() != nil {
				continue
			}
			env.reply <- a.handle(env.payload)
		}
	}
}

func (a *Agent) setState(s State) {
	a.state = s
	a.stateView.Store(int32(s))
}

// handle 处理一次提交
// 1. 已成交: 相同 payload 重放原决策, 不同 payload 返回冲突
// 2. 已拒绝: 相同 payload 重放原决策, 不同 payload 重新处理 (铭文已释放)
// 3. 可售: 进入 Deciding, 调用一次结算, 落库并进入终态
func (a *Agent) handle(payload string) Response {
	hash := payloadHash(payload)

	switch a.state {
	case StateCommitted:
		if hash == a.payloadHash {
			return a.decision
		}
		return a.reject(errcode.NewConflictErr(msgAlreadyDecided))
	case StateRejected:
		if hash == a.payloadHash {
			return a.decision
		}
	case StateDeciding:
		// handle 与 decide 都在 loop 中串行执行, 排队的提交观察不到 Deciding
		// 只有 decide 未能离开 Deciding 时才会走到这里, 按冲突拒绝
		return a.reject(errcode.NewConflictErr(msgSaleInProgress))
	}

	return a.decide(payload, hash)
}

func (a *Agent) decide(payload, hash string) (resp Response) {
	log := xzap.WithContext(context.Background()).With(zap.String("agent", a.key.String()))

	a.setState(StateDeciding)
	a.payloadHash = hash

	defer func() {
		// 决策过程中 panic 也要离开 Deciding
		if p := recover(); p != nil {
			log.Error("sale agent panic", zap.Any("panic", p))
			resp = a.settleFailed(errcode.NewUpstreamErr(fmt.Sprintf("settlement panic: %v", p)), log)
		}
	}()

	res, err := a.settle(payload)
	if err != nil {
		return a.settleFailed(err, log)
	}
	if res == nil || !res.Accepted {
		return a.settleDeclined(res, log)
	}

	a.markState(types.ItemStatePending, log)
	a.setState(StateCommitted)
	decisionID := uuid.NewString()
	a.decision = a.encode(http.StatusOK, types.SaleDecision{
		DecisionID:     decisionID,
		Accepted:       true,
		CollectionSlug: a.key.CollectionSlug,
		InscriptionID:  a.key.InscriptionID,
		Txid:           res.Txid,
		Details:        res.Details,
	})
	log.Info("sale committed", zap.String("txid", res.Txid))
	a.publish(types.SettlementEvent{
		DecisionID:     decisionID,
		CollectionSlug: a.key.CollectionSlug,
		InscriptionID:  a.key.InscriptionID,
		Txid:           res.Txid,
		SettledAt:      time.Now().Unix(),
	}, log)
	return a.decision
}

type settleOutcome struct {
	res *types.SettleResult
	err error
}

// settle 调用一次结算, 最多等待 a.timeout
// 1. 结算在独立 goroutine 中执行, 结算方不响应 ctx 时 loop 也不会被卡住
// 2. 超时后仍在运行的结算结果被丢弃, goroutine 在结算方返回后退出
// 3. 截止时刻与结果同时到达时以结果为准
func (a *Agent) settle(payload string) (*types.SettleResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	settler, sale := a.settler, types.SaleRequest{
		CollectionSlug: a.key.CollectionSlug,
		InscriptionID:  a.key.InscriptionID,
		SignedPsbt:     payload,
	}
	done := make(chan settleOutcome, 1)
	threading.GoSafe(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- settleOutcome{err: errcode.NewUpstreamErr(fmt.Sprintf("settlement panic: %v", p))}
			}
		}()
		res, err := settler.Settle(ctx, sale)
		done <- settleOutcome{res: res, err: err}
	})

	var out settleOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		default:
			return nil, errors.Wrap(errcode.ErrUpstreamTimeout, ctx.Err().Error())
		}
	}
	if out.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, errors.Wrap(errcode.ErrUpstreamTimeout, out.err.Error())
	}
	return out.res, out.err
}

// publish 在后台推送成交事件, 不阻塞对买家的应答
func (a *Agent) publish(event types.SettlementEvent, log *zap.Logger) {
	if a.publisher == nil {
		return
	}
	publisher, timeout := a.publisher, a.timeout
	threading.GoSafe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := publisher.PublishSettlement(ctx, event); err != nil {
			log.Warn("failed on publish settlement", zap.Error(err))
		}
	})
}

// settleFailed 结算调用失败或超时, 释放铭文并记录拒绝
func (a *Agent) settleFailed(err error, log *zap.Logger) Response {
	e := errcode.ParseErr(err)
	if e == errcode.ErrUnexpected {
		e = errcode.NewUpstreamErr(err.Error())
	}
	log.Warn("sale rejected", zap.Error(err))
	return a.commitRejection(e.HTTPStatus, e.Code, e.Msg, nil, log)
}

// settleDeclined 签名服务明确拒绝了交易
func (a *Agent) settleDeclined(res *types.SettleResult, log *zap.Logger) Response {
	var details map[string]interface{}
	if res != nil {
		details = res.Details
	}
	log.Warn("sale declined by signing agent")
	return a.commitRejection(errcode.ErrUpstream.HTTPStatus, errcode.ErrUpstream.Code, msgSaleDeclined, details, log)
}

func (a *Agent) commitRejection(status, code int, msg string, details map[string]interface{}, log *zap.Logger) Response {
	a.markState(types.ItemStateAvailable, log)
	a.setState(StateRejected)
	a.decision = a.encode(status, types.SaleDecision{
		DecisionID:     uuid.NewString(),
		Accepted:       false,
		CollectionSlug: a.key.CollectionSlug,
		InscriptionID:  a.key.InscriptionID,
		Details:        details,
		Code:           code,
		Error:          msg,
	})
	return a.decision
}

// reject 不改变状态的拒绝 (冲突)
func (a *Agent) reject(e *errcode.Err) Response {
	return a.encode(e.HTTPStatus, types.SaleDecision{
		Accepted:       false,
		CollectionSlug: a.key.CollectionSlug,
		InscriptionID:  a.key.InscriptionID,
		Code:           e.Code,
		Error:          e.Msg,
	})
}

// markState 写入铭文状态, 每次决策调用一次
// 结算已经发生, 写库失败不影响对买家的应答, 只做有限重试并记录
func (a *Agent) markState(state types.ItemState, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err := utils.Retry(ctx, "mark inscription state", markStateAttempts, markStateInterval, func() error {
		return a.store.MarkItemState(ctx, a.key.CollectionSlug, a.key.InscriptionID, state)
	})
	if err != nil {
		log.Error("failed on mark inscription state", zap.String("state", string(state)), zap.Error(err))
	}
}

func (a *Agent) encode(status int, d types.SaleDecision) Response {
	body, err := json.Marshal(d)
	if err != nil {
		return Response{Status: http.StatusInternalServerError, Body: []byte(`{}`)}
	}
	return Response{Status: status, Body: body}
}

func payloadHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
