package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"microblog/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishPost(context.Background(), &models.Post{ID: 1}, []uint{2}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))
}

func TestHub_StartWiring_DeliversPostsToFollowers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	hub := NewHub()
	require.NoError(t, hub.StartWiring(ctx, n))

	follower, err := hub.Register(2, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(3, nil)
	require.NoError(t, err)

	post := &models.Post{
		ID:        9,
		Body:      "hello",
		UserID:    1,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Author:    &models.User{ID: 1, Username: "alice", Email: "alice@example.com"},
	}
	require.NoError(t, n.PublishPost(context.Background(), post, []uint{2}))

	var raw []byte
	select {
	case raw = <-follower.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not receive the post")
	}

	var event struct {
		Type    string `json:"type"`
		Payload struct {
			ID     uint `json:"id"`
			Author struct {
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"author"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventNewPost, event.Type)
	assert.Equal(t, uint(9), event.Payload.ID)
	assert.Equal(t, "alice", event.Payload.Author.Username)
	assert.Empty(t, event.Payload.Author.Email)

	assert.Never(t, func() bool { return len(bystander.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	_ = hub.Shutdown(context.Background())
}
