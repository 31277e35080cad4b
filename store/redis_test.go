package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bibbit-ltd/tool-use/chatmodel"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/store"
	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)
	t.Cleanup(func() {
		_ = client.Close()
	})
	require.NoError(t, client.Ping(ctx).Err(), "failed to connect to Redis")
	return client
}

func Test_RedisStore(t *testing.T) {
	client := newRedisClient(t)

	root := fmt.Sprintf("test-%d", time.Now().Unix())
	testStore(t, store.NewRedisStore(client, root, 0))

	t.Run("max messages", func(t *testing.T) {
		st := store.NewRedisStore(client, root+"-max", 3)
		ctx := chatmodel.WithChatContext(context.Background(), chatmodel.NewChatContext("", "", nil))
		for i := 0; i < 5; i++ {
			require.NoError(t, st.Add(ctx, llms.NewUserMessage(fmt.Sprintf("msg %d", i))))
		}
		msgs := st.Messages(ctx)
		require.Len(t, msgs, 3)
		assert.Equal(t, "msg 2", msgs[0].Text())
		assert.Equal(t, "msg 4", msgs[2].Text())
	})
}
