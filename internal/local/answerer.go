package local

import (
	"context"
	"strings"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// NoContextAnswer is returned when no documentation was retrieved.
const NoContextAnswer = "I couldn't find relevant information in the documentation for your query."

const localNote = "*Note: This response is from retrieved documentation. For AI-generated answers, configure an OpenAI or Gemini API key.*"

// Answerer is an LLMProvider that answers with the retrieved passages
// themselves. It needs no credentials and is deterministic.
type Answerer struct {
	maxPassages int
}

// NewAnswerer creates an Answerer quoting at most maxPassages passages.
// Zero quotes all of them.
func NewAnswerer(maxPassages int) *Answerer {
	return &Answerer{maxPassages: maxPassages}
}

func (a *Answerer) Name() string {
	return "local"
}

func (a *Answerer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	passages := make([]string, 0, len(req.Context))
	for _, p := range req.Context {
		if p = strings.TrimSpace(p); p != "" {
			passages = append(passages, p)
		}
	}
	if len(passages) == 0 {
		return NoContextAnswer, nil
	}
	if a.maxPassages > 0 && len(passages) > a.maxPassages {
		passages = passages[:a.maxPassages]
	}

	var b strings.Builder
	b.WriteString("Based on the documentation, here's what I found:\n\n")
	b.WriteString(strings.Join(passages, "\n\n---\n\n"))
	b.WriteString("\n\n---\n")
	b.WriteString(localNote)
	return b.String(), nil
}
