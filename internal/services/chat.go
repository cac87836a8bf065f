package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/normalize"
)

// Generator is the upstream text-generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatService answers one question per call. Every failure is mapped to a
// displayable reply, so Reply has no error return.
type ChatService struct {
	generator Generator
	prompts   *PromptCatalog
	log       logrus.FieldLogger
}

// NewChatService accepts a nil generator, meaning no API key is configured.
func NewChatService(generator Generator, prompts *PromptCatalog, log logrus.FieldLogger) *ChatService {
	return &ChatService{
		generator: generator,
		prompts:   prompts,
		log:       log.WithField("component", "chat"),
	}
}

func (s *ChatService) Configured() bool {
	return s.generator != nil
}

func (s *ChatService) Reply(ctx context.Context, query string) models.NormalizedReply {
	if s.generator == nil {
		return models.NormalizedReply{
			Response:    s.prompts.Messages.MissingKey,
			Suggestions: normalize.Copy(s.prompts.Suggestions.MissingKey),
		}
	}

	prompt, err := s.prompts.ChatPrompt(query)
	if err != nil {
		return s.errorReply(err)
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.errorReply(err)
	}

	result := normalize.Normalize(text, s.prompts.Suggestions.Fallback)
	entry := s.log.WithField("outcome", result.Outcome.String())
	if result.Err != nil {
		entry.WithError(result.Err).Warn("JSON parse error, using raw model text")
	} else {
		entry.Debug("model reply normalized")
	}
	return result.Reply
}

// ErrorReply is the displayable reply for a request that could not be read.
// Without an API key the guidance reply wins.
func (s *ChatService) ErrorReply(err error) models.NormalizedReply {
	if s.generator == nil {
		return s.Reply(context.Background(), "")
	}
	s.log.WithError(err).Warn("unreadable chat request")
	return s.failureReply(err)
}

func (s *ChatService) errorReply(err error) models.NormalizedReply {
	s.log.WithError(err).Error("upstream model call failed")
	return s.failureReply(err)
}

func (s *ChatService) failureReply(err error) models.NormalizedReply {
	return models.NormalizedReply{
		Response:    s.prompts.Messages.ErrorPrefix + err.Error(),
		Suggestions: normalize.Copy(s.prompts.Suggestions.UpstreamError),
	}
}
