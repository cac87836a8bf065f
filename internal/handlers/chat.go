package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"chatbot-backend/internal/models"
)

const maxChatBody = 64 << 10

type chatReplier interface {
	Reply(ctx context.Context, query string) models.NormalizedReply
	ErrorReply(err error) models.NormalizedReply
}

type ChatHandler struct {
	chat chatReplier
}

func NewChatHandler(chat chatReplier) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Ask answers one question. Every outcome, an unreadable body included, is
// a 200 with a displayable reply.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	var reply models.NormalizedReply
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		reply = h.chat.ErrorReply(err)
	} else {
		reply = h.chat.Reply(r.Context(), req.Query)
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, reply)
}
