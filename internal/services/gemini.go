package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiService is the upstream model call. It treats the reply as untrusted
// free text; shaping it is the normalizer's job.
type GeminiService struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	log       logrus.FieldLogger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, log logrus.FieldLogger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		log:       log.WithField("component", "gemini"),
	}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

func (s *GeminiService) ModelName() string {
	return s.modelName
}

// Generate sends a single prompt and returns the concatenated text parts.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	logFinishReasons(s.log, resp)

	text := extractText(resp)
	s.log.WithField("chars", len(text)).Debugf("Raw response: %s", text)
	return text, nil
}

func logFinishReasons(log logrus.FieldLogger, resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	for i, cand := range resp.Candidates {
		if cand == nil || cand.FinishReason == genai.FinishReasonStop {
			continue
		}
		log.WithFields(logrus.Fields{
			"candidate":     i,
			"finish_reason": cand.FinishReason.String(),
			"token_count":   cand.TokenCount,
		}).Warn("Gemini stopped early")
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
