package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "webcourse/internal/adapters/redis"
	"webcourse/internal/core/flash"
	"webcourse/internal/testutil"
)

func TestFlashPopOnce(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := redisadapter.NewFlashRepositoryRedis(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "s1", flash.Message{Level: flash.Success, Text: "saved"}))
	require.NoError(t, repo.Add(ctx, "s1", flash.Message{Level: flash.Error, Text: "but"}))
	require.NoError(t, repo.Add(ctx, "s2", flash.Message{Level: flash.Info, Text: "other"}))

	msgs, err := repo.Pop(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []flash.Message{
		{Level: flash.Success, Text: "saved"},
		{Level: flash.Error, Text: "but"},
	}, msgs)

	msgs, err = repo.Pop(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = repo.Pop(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestFlashExpires(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	repo := redisadapter.NewFlashRepositoryRedis(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "s1", flash.Message{Level: flash.Info, Text: "soon gone"}))
	assert.True(t, mr.Exists("flash:s1"))
	assert.Equal(t, time.Minute, mr.TTL("flash:s1"))

	mr.FastForward(2 * time.Minute)
	msgs, err := repo.Pop(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
