package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/xkv"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

const CacheSettlementQueueKey = "cache:%s:launchpad:settlement:pending"

const CacheSettlementPreventReentrancyKeyPrefix = "cache:%s:launchpad:settlement:prevent:reentrancy:%s"
const PreventReentrancyPeriod = 60 //second

func GetSettlementQueueKey(project string) string {
	return fmt.Sprintf(CacheSettlementQueueKey, strings.ToLower(project))
}

func GetSettlementReentrancyKey(project, decisionID string) string {
	return fmt.Sprintf(CacheSettlementPreventReentrancyKeyPrefix, strings.ToLower(project), decisionID)
}

// SettlementQueue 成交事件队列
// 链上确认任务从队列中取出 pending 状态的铭文, 确认后标记为 sold
type SettlementQueue struct {
	project string
	kvStore *xkv.Store
}

func NewSettlementQueue(kvStore *xkv.Store, project string) *SettlementQueue {
	return &SettlementQueue{project: project, kvStore: kvStore}
}

// PublishSettlement 推送一条成交事件
// 功能:
// 1. 检查防重入锁, 同一决策只推送一次
// 2. 将事件序列化为 JSON 推送到 Redis Set 队列 (SAdd)
// 3. 设置防重入锁过期时间
func (q *SettlementQueue) PublishSettlement(ctx context.Context, event types.SettlementEvent) error {
	reentrancyKey := GetSettlementReentrancyKey(q.project, event.DecisionID)
	published, err := q.kvStore.GetCtx(ctx, reentrancyKey)
	if err != nil {
		return errors.Wrap(err, "failed on check reentrancy status")
	}
	if published != "" {
		xzap.WithContext(ctx).Info("settlement already published", zap.String("decision_id", event.DecisionID))
		return nil
	}

	raw, err := json.Marshal(&event)
	if err != nil {
		return errors.Wrap(err, "failed on marshal settlement event")
	}

	if _, err := q.kvStore.SaddCtx(ctx, GetSettlementQueueKey(q.project), string(raw)); err != nil {
		return errors.Wrap(err, "failed on push settlement to queue")
	}

	_ = q.kvStore.SetexCtx(ctx, reentrancyKey, "true", PreventReentrancyPeriod)
	return nil
}
