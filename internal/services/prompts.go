package services

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"chatbot-backend/internal/normalize"
)

//go:embed prompts/chat.yaml
var defaultPromptsYAML []byte

// PromptCatalog holds the chat instruction and every canned reply the chat
// endpoint can return.
type PromptCatalog struct {
	Instruction string `yaml:"instruction"`
	Messages    struct {
		MissingKey  string `yaml:"missing_key"`
		ErrorPrefix string `yaml:"error_prefix"`
	} `yaml:"messages"`
	Suggestions struct {
		Fallback      []string `yaml:"fallback"`
		MissingKey    []string `yaml:"missing_key"`
		UpstreamError []string `yaml:"upstream_error"`
	} `yaml:"suggestions"`

	tmpl *template.Template
}

// DefaultPromptCatalog loads the catalog compiled into the binary.
func DefaultPromptCatalog() (*PromptCatalog, error) {
	return LoadPromptCatalog(defaultPromptsYAML)
}

func LoadPromptCatalog(data []byte) (*PromptCatalog, error) {
	var c PromptCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	missing := []string{}
	if strings.TrimSpace(c.Instruction) == "" {
		missing = append(missing, "instruction")
	}
	if c.Messages.MissingKey == "" {
		missing = append(missing, "messages.missing_key")
	}
	if len(c.Suggestions.Fallback) == 0 {
		missing = append(missing, "suggestions.fallback")
	}
	if len(c.Suggestions.MissingKey) == 0 {
		missing = append(missing, "suggestions.missing_key")
	}
	if len(c.Suggestions.UpstreamError) == 0 {
		missing = append(missing, "suggestions.upstream_error")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("prompt catalog is missing %s", strings.Join(missing, ", "))
	}

	tmpl, err := template.New("chat").Option("missingkey=error").Parse(c.Instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat instruction: %w", err)
	}
	c.tmpl = tmpl
	return &c, nil
}

// ChatPrompt renders the instruction for one question.
func (c *PromptCatalog) ChatPrompt(query string) (string, error) {
	var b strings.Builder
	if err := c.tmpl.Execute(&b, struct{ Query string }{Query: query}); err != nil {
		return "", fmt.Errorf("failed to render chat prompt: %w", err)
	}
	return b.String(), nil
}

// FallbackSuggestions returns a fresh copy of the generic follow-ups.
func (c *PromptCatalog) FallbackSuggestions() []string {
	return normalize.Copy(c.Suggestions.Fallback)
}
