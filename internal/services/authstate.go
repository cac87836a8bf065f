package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/models"
)

// AuthBroker delivers auth-state changes for one browser session. A nil user
// means signed out.
type AuthBroker interface {
	Publish(ctx context.Context, sessionID string, user *models.User) error
	Subscribe(ctx context.Context, sessionID string, fn func(*models.User)) (unsubscribe func())
}

// LocalAuthBroker fans out in-process.
type LocalAuthBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(*models.User)
}

func NewLocalAuthBroker() *LocalAuthBroker {
	return &LocalAuthBroker{subs: make(map[string]map[int]func(*models.User))}
}

func (b *LocalAuthBroker) Publish(ctx context.Context, sessionID string, user *models.User) error {
	b.mu.Lock()
	fns := make([]func(*models.User), 0, len(b.subs[sessionID]))
	for _, fn := range b.subs[sessionID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(user))
	}
	return nil
}

func (b *LocalAuthBroker) Subscribe(ctx context.Context, sessionID string, fn func(*models.User)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[int]func(*models.User))
	}
	b.subs[sessionID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[sessionID], id)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
		})
	}
}

func (b *LocalAuthBroker) subscriberCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}

// RedisAuthBroker fans out across server instances, so a sign-in completed on
// one instance reaches a page connected to another.
type RedisAuthBroker struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedisAuthBroker(client *redis.Client, log logrus.FieldLogger) *RedisAuthBroker {
	return &RedisAuthBroker{client: client, log: log.WithField("component", "auth_broker")}
}

type authStateEvent struct {
	User *models.User `json:"user"`
}

func authStateChannel(sessionID string) string {
	return "auth_state:" + sessionID
}

func (b *RedisAuthBroker) Publish(ctx context.Context, sessionID string, user *models.User) error {
	data, err := json.Marshal(authStateEvent{User: user})
	if err != nil {
		return fmt.Errorf("failed to encode auth state: %w", err)
	}
	if err := b.client.Publish(ctx, authStateChannel(sessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish auth state: %w", err)
	}
	return nil
}

func (b *RedisAuthBroker) Subscribe(ctx context.Context, sessionID string, fn func(*models.User)) func() {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(ctx, authStateChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		b.log.WithError(err).WithField("session_id", sessionID).Warn("auth state subscription not confirmed")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev authStateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.WithError(err).Warn("dropping malformed auth state event")
					continue
				}
				fn(ev.User)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			pubsub.Close()
			<-done
		})
	}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
