package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"chatbot-backend/internal/models"
)

var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrPending    = errors.New("a request is already in flight")
)

// Transport sends one question to the chat endpoint.
type Transport interface {
	Ask(ctx context.Context, query string) (models.NormalizedReply, error)
}

// Conversation is the client-side turn list. At most one request is in flight;
// turns are only ever appended and live for the life of the value.
type Conversation struct {
	transport Transport

	mu      sync.Mutex
	turns   []models.ChatTurn
	pending bool
}

func NewConversation(transport Transport) *Conversation {
	return &Conversation{transport: transport}
}

// Submit trims query and asks it. A blank query never reaches the transport.
// A failed request appends nothing and clears the pending flag.
func (c *Conversation) Submit(ctx context.Context, query string) (models.ChatTurn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.ChatTurn{}, ErrEmptyQuery
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return models.ChatTurn{}, ErrPending
	}
	c.pending = true
	c.mu.Unlock()

	reply, err := c.transport.Ask(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err != nil {
		return models.ChatTurn{}, err
	}

	suggestions := reply.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	turn := models.ChatTurn{Query: query, Response: reply.Response, Suggestions: suggestions}
	c.turns = append(c.turns, turn)
	return turn, nil
}

func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Turns returns a copy of the history in submission order.
func (c *Conversation) Turns() []models.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Suggestion returns chip n (1-based) of the latest turn.
func (c *Conversation) Suggestion(n int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.turns) == 0 {
		return "", false
	}
	last := c.turns[len(c.turns)-1].Suggestions
	if n < 1 || n > len(last) {
		return "", false
	}
	return last[n-1], true
}
