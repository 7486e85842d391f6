package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/pkg/agent"
)

func TestTokenBucketAllowBurst(t *testing.T) {
	// 容量为 3,初始满桶,连续三次应放行,第四次拒绝
	tb := NewTokenBucket(60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "初始令牌应允许突发请求")
	}
	assert.False(t, tb.Allow(), "令牌耗尽后应拒绝")
}

func TestTokenBucketRefill(t *testing.T) {
	// 6000 QPM = 每秒 100 个令牌,耗尽后短暂等待即可恢复
	tb := NewTokenBucket(6000, 1)
	require.True(t, tb.Allow())
	require.False(t, tb.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, tb.Allow(), "等待补充周期后应重新放行")
}

func TestTokenBucketWaitRespectsContext(t *testing.T) {
	// 极低速率,令牌耗尽后 Wait 只能靠上下文超时退出
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenBucketDefaultCapacity(t *testing.T) {
	// 未指定容量时取 QPM 的一半
	tb := NewTokenBucket(10, 0)
	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow())
	}
	assert.False(t, tb.Allow())
}

func TestRateLimitedModelSingleAttempt(t *testing.T) {
	// 底层模型失败时代理不应重试,调用次数保持为一
	mock := agent.NewMockChatClient("", assert.AnError)
	limited := NewRateLimitedLLMModel(mock, 600)

	msgs := []*schema.Message{schema.UserMessage("hello")}
	_, err := limited.Generate(context.Background(), msgs)
	require.Error(t, err)
	assert.Len(t, mock.GetReceivedMessages(), 1, "失败后不应自动重试")
}

func TestRateLimitedModelQueuesWhenExhausted(t *testing.T) {
	mock := agent.NewMockChatClient("ok", nil)
	limited := NewRateLimitedLLMModel(mock, 6000)

	// 耗尽突发额度后的调用应被短暂排队而非失败
	msgs := []*schema.Message{schema.UserMessage("hello")}
	start := time.Now()
	for i := 0; i < 5; i++ {
		resp, err := limited.Generate(context.Background(), msgs)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
	}
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, mock.GetReceivedMessages(), 5)
}
