package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/logging"
	"chatbot-backend/internal/models"
)

func TestLocalAuthBroker_DeliversToSessionOnly(t *testing.T) {
	ctx := context.Background()
	b := NewLocalAuthBroker()

	var gotA, gotB []*models.User
	unsubA := b.Subscribe(ctx, "sid-a", func(u *models.User) { gotA = append(gotA, u) })
	defer unsubA()
	unsubB := b.Subscribe(ctx, "sid-b", func(u *models.User) { gotB = append(gotB, u) })
	defer unsubB()

	user := &models.User{ID: "1", Email: "ada@example.com"}
	require.NoError(t, b.Publish(ctx, "sid-a", user))
	require.NoError(t, b.Publish(ctx, "sid-a", nil))

	require.Len(t, gotA, 2)
	assert.Equal(t, "ada@example.com", gotA[0].Email)
	assert.NotSame(t, user, gotA[0], "subscribers get their own copy")
	assert.Nil(t, gotA[1])
	assert.Empty(t, gotB)
}

func TestLocalAuthBroker_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	b := NewLocalAuthBroker()

	calls := 0
	unsub := b.Subscribe(ctx, "sid", func(*models.User) { calls++ })
	assert.Equal(t, 1, b.subscriberCount("sid"))

	unsub()
	unsub()
	assert.Equal(t, 0, b.subscriberCount("sid"))

	require.NoError(t, b.Publish(ctx, "sid", &models.User{ID: "1"}))
	assert.Equal(t, 0, calls)
}

func TestRedisAuthBroker_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	b := NewRedisAuthBroker(client, logging.Discard())

	got := make(chan *models.User, 2)
	unsub := b.Subscribe(ctx, "sid-1", func(u *models.User) { got <- u })
	defer unsub()

	require.NoError(t, b.Publish(ctx, "sid-1", &models.User{ID: "1", Email: "ada@example.com"}))
	require.NoError(t, b.Publish(ctx, "sid-1", nil))
	require.NoError(t, b.Publish(ctx, "sid-2", &models.User{ID: "2"}))

	select {
	case u := <-got:
		require.NotNil(t, u)
		assert.Equal(t, "ada@example.com", u.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("no sign-in event")
	}
	select {
	case u := <-got:
		assert.Nil(t, u)
	case <-time.After(2 * time.Second):
		t.Fatal("no sign-out event")
	}
	select {
	case u := <-got:
		t.Fatalf("unexpected event for another session: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}
