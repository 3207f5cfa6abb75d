package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
)

// SystemPrompt instructs the model to answer only from retrieved context.
const SystemPrompt = `You are an expert developer documentation assistant. Your role is to:

1. Answer technical questions accurately based on the provided documentation context
2. Be concise and developer-friendly in your responses
3. Include code examples when relevant
4. If the answer is not found in the context, clearly state that
5. Never make up information - only use what's in the documentation
6. Format responses with proper markdown for readability

Always prioritize accuracy over completeness. If you're unsure, say so.`

const contextSeparator = "\n\n---\n\n"

// GenerationConfig controls prompt assembly and the retry policy.
type GenerationConfig struct {
	// HistoryTurns is the maximum number of history messages included.
	HistoryTurns int
	// Timeout bounds a single provider call.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Temperature    float32
	MaxTokens      int
}

// DefaultGenerationConfig provides sane defaults for generation.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		HistoryTurns:   6,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		BackoffInitial: 500 * time.Millisecond,
		BackoffMax:     8 * time.Second,
		Temperature:    0.3,
		MaxTokens:      1000,
	}
}

// PromptContext is everything the generator needs for one answer.
type PromptContext struct {
	Chunks  []domain.ScoredEntry
	History []domain.ConversationEntry
	Query   string
}

// GeneratedAnswer is a successful generation.
type GeneratedAnswer struct {
	Text     string
	Attempts int
	Provider string
}

// Generator drives an LLMProvider with bounded retries.
type Generator struct {
	provider LLMProvider
	cfg      GenerationConfig
	counters *telemetry.Counters
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a new Generator instance
func NewGenerator(provider LLMProvider, cfg GenerationConfig, counters *telemetry.Counters) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGenerationConfig().Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Generator{
		provider: provider,
		cfg:      cfg,
		counters: counters,
		sleep:    sleepContext,
	}
}

// ProviderName returns the name of the underlying provider.
func (g *Generator) ProviderName() string {
	return g.provider.Name()
}

// BuildPrompt assembles a completion request. The output depends only on pc
// and cfg.
func BuildPrompt(pc PromptContext, cfg GenerationConfig) domain.CompletionRequest {
	passages := make([]string, 0, len(pc.Chunks))
	blocks := make([]string, 0, len(pc.Chunks))
	for i, hit := range pc.Chunks {
		passages = append(passages, hit.Entry.Chunk.Text)
		blocks = append(blocks, fmt.Sprintf("[%d] Source: %s\n%s", i+1, hit.Entry.Chunk.Source, hit.Entry.Chunk.Text))
	}
	contextText := strings.Join(blocks, contextSeparator)

	history := pc.History
	if cfg.HistoryTurns >= 0 && len(history) > cfg.HistoryTurns {
		history = history[len(history)-cfg.HistoryTurns:]
	}

	messages := make([]domain.Message, 0, len(history)+1)
	for _, h := range history {
		messages = append(messages, domain.Message{Role: h.Role, Content: h.Text})
	}
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: buildUserPrompt(pc.Query, contextText),
	})

	return domain.CompletionRequest{
		System:      SystemPrompt,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Context:     passages,
		Query:       pc.Query,
	}
}

func buildUserPrompt(query, contextText string) string {
	var b strings.Builder
	b.WriteString("Based on the following documentation context, please answer the question.\n\n")
	b.WriteString("Documentation Context:\n---\n")
	if contextText == "" {
		b.WriteString("(no relevant documentation was found)")
	} else {
		b.WriteString(contextText)
	}
	b.WriteString("\n---\n\n")
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nPlease provide a clear, accurate answer based only on the documentation above.")
	return b.String()
}

// Generate produces an answer for pc. Timeouts, rate limits and server errors
// are retried with exponential backoff up to MaxRetries times; other failures
// and empty responses fail immediately. Every failure is a GenerationError.
func (g *Generator) Generate(ctx context.Context, pc PromptContext) (*GeneratedAnswer, error) {
	req := BuildPrompt(pc, g.cfg)

	ctx, span := telemetry.StartSpan(ctx, "llm.generate", telemetry.SpanAttributes{
		Provider:  g.provider.Name(),
		Operation: "generate",
	})
	defer span.End()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.cfg.BackoffInitial
	bo.MaxInterval = g.cfg.BackoffMax
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; ; attempt++ {
		g.counters.Inc(telemetry.CounterGenerationAttempts)

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		text, err := g.provider.Complete(callCtx, req)
		cancel()

		if err == nil {
			if strings.TrimSpace(text) == "" {
				span.SetError(domain.ErrEmptyCompletion)
				return nil, domain.GenerationError(domain.ErrEmptyCompletion)
			}
			return &GeneratedAnswer{Text: text, Attempts: attempt, Provider: g.provider.Name()}, nil
		}

		lastErr = err
		if attempt > g.cfg.MaxRetries || !isRetryable(ctx, err) {
			break
		}

		delay := bo.NextBackOff()
		g.counters.Inc(telemetry.CounterGenerationRetries)
		log.Printf("llm: attempt %d with %s failed, retrying in %v: %v", attempt, g.provider.Name(), delay, err)
		if err := g.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	span.SetError(lastErr)
	return nil, domain.GenerationError(lastErr)
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
