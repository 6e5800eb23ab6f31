package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/howzat/howzat/engine/query"
)

const systemPrompt = `You are a cricket query analyst. Classify the user's
query and extract entities. Respond with ONLY a JSON object:
{
  "intent": "factual|opinion|live|historical|ball_level|comparison|sentiment|visualization|prediction|hybrid",
  "temporal": "live|recent|historical|unspecified",
  "complexity": 1,
  "confidence": 0.95,
  "reasoning": "one sentence",
  "entities": [{"kind": "player|team|match|venue|daterange", "name": "..."}]
}
Complexity is 1 for single-source questions, 2 when two sources must be
combined, 3 when the question spans live data, history and analysis at once.`

// ProviderConfig configures the LLM-backed NLU provider.
type ProviderConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// LangChainNLU implements NLU on top of a langchaingo model.
type LangChainNLU struct {
	model llms.Model
	cfg   ProviderConfig
}

// NewLangChainNLU builds the production provider from config.
func NewLangChainNLU(cfg ProviderConfig) (*LangChainNLU, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating NLU model: %w", err)
	}
	return NewLangChainNLUFromModel(model, cfg), nil
}

// NewLangChainNLUFromModel wraps an existing model, used by tests.
func NewLangChainNLUFromModel(model llms.Model, cfg ProviderConfig) *LangChainNLU {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &LangChainNLU{model: model, cfg: cfg}
}

func (p *LangChainNLU) Extract(ctx context.Context, text string, sessionCtx map[string]string) (*query.ClassificationResult, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildUserMessage(text, sessionCtx)),
	}
	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithTemperature(p.cfg.Temperature),
		llms.WithMaxTokens(p.cfg.MaxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrClassification)
	}
	return parseResponse(resp.Choices[0].Content)
}

func buildUserMessage(text string, sessionCtx map[string]string) string {
	var sb strings.Builder
	sb.WriteString("Query: ")
	sb.WriteString(text)
	if locale, ok := sessionCtx["locale"]; ok {
		sb.WriteString("\nLocale: ")
		sb.WriteString(locale)
	}
	if prior, ok := sessionCtx["prior_turn"]; ok {
		sb.WriteString("\nPrevious turn: ")
		sb.WriteString(prior)
	}
	return sb.String()
}

// parseResponse reads the model output leniently: models wrap JSON in code
// fences or prose often enough that a strict unmarshal is the wrong tool.
func parseResponse(raw string) (*query.ClassificationResult, error) {
	trimmed := strings.TrimSpace(raw)
	if idx := strings.Index(trimmed, "{"); idx > 0 {
		trimmed = trimmed[idx:]
	}
	if idx := strings.LastIndex(trimmed, "}"); idx >= 0 {
		trimmed = trimmed[:idx+1]
	}
	if !gjson.Valid(trimmed) {
		return nil, fmt.Errorf("%w: model returned unparseable classification", ErrClassification)
	}
	doc := gjson.Parse(trimmed)
	result := &query.ClassificationResult{
		Intent:     query.ParseIntent(doc.Get("intent").String()),
		Temporal:   query.ParseTemporal(doc.Get("temporal").String()),
		Complexity: int(doc.Get("complexity").Int()),
		Confidence: doc.Get("confidence").Float(),
		Reasoning:  doc.Get("reasoning").String(),
	}
	for _, e := range doc.Get("entities").Array() {
		kind := parseEntityKind(e.Get("kind").String())
		name := strings.TrimSpace(e.Get("name").String())
		if kind == "" || name == "" {
			continue
		}
		result.Entities = append(result.Entities, query.Entity{
			Kind: kind,
			Name: name,
			ID:   e.Get("id").String(),
		})
	}
	result.Normalize()
	return result, nil
}

func parseEntityKind(s string) query.EntityKind {
	switch query.EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case query.EntityPlayer:
		return query.EntityPlayer
	case query.EntityTeam:
		return query.EntityTeam
	case query.EntityMatch:
		return query.EntityMatch
	case query.EntityVenue:
		return query.EntityVenue
	case query.EntityDateRange:
		return query.EntityDateRange
	default:
		return ""
	}
}
