package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry 通用重试函数
// @param ctx: 取消后立即停止重试
// @param name: 操作名称(用于错误提示)
// @param attempts: 最大重试次数
// @param sleep: 每次重试间隔时间
// @param fn: 需要执行的函数,返回 error 表示失败需要的重试
// @return error: 如果所有尝试都失败,返回包含最后一次错误的 "retry time over"
func Retry(ctx context.Context, name string, attempts int, sleep time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		// 执行函数,如果无错误则直接返回成功
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		// 最后一次失败不再等待
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	// 所有尝试都失败
	return fmt.Errorf("%s: retry time over: %w", name, lastErr)
}
