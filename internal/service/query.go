package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/textutil"
)

const defaultExcerptChars = 500

// QueryConfig controls retrieval and memory behaviour of QueryService.
type QueryConfig struct {
	TopK          int
	MemoryEnabled bool
	MaxHistory    int
	// AllowEmptyContext lets generation run without retrieved passages
	// instead of failing with a RetrievalError.
	AllowEmptyContext bool
	ExcerptChars      int
}

// DefaultQueryConfig provides sane defaults for querying.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:          5,
		MemoryEnabled: true,
		MaxHistory:    10,
		ExcerptChars:  defaultExcerptChars,
	}
}

// QueryInput is a single question.
type QueryInput struct {
	Text           string
	UserID         string
	ChannelID      string
	IncludeSources bool
}

// QueryService answers questions from indexed documentation.
type QueryService struct {
	embedder  EmbeddingProvider
	index     VectorIndex
	generator *Generator
	memory    ConversationMemory
	cfg       QueryConfig
	counters  *telemetry.Counters
	now       func() time.Time
}

// NewQueryService creates a new QueryService instance. memory may be nil,
// which disables conversation history.
func NewQueryService(
	embedder EmbeddingProvider,
	index VectorIndex,
	generator *Generator,
	memory ConversationMemory,
	cfg QueryConfig,
	counters *telemetry.Counters,
) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultQueryConfig().TopK
	}
	if cfg.ExcerptChars <= 0 {
		cfg.ExcerptChars = defaultExcerptChars
	}
	if memory == nil {
		cfg.MemoryEnabled = false
	}
	return &QueryService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		memory:    memory,
		cfg:       cfg,
		counters:  counters,
		now:       time.Now,
	}
}

// Query runs a question through validation, retrieval, generation and the
// memory update. A failed memory update is logged and does not fail the query.
func (s *QueryService) Query(ctx context.Context, in QueryInput) (*domain.QueryResult, error) {
	lc := domain.NewQueryLifecycle(s.now())
	s.counters.Inc(telemetry.CounterQueries)
	in.UserID = strings.TrimSpace(in.UserID)

	ctx, span := telemetry.StartSpan(ctx, "query", telemetry.SpanAttributes{
		UserID:    in.UserID,
		Operation: "query",
	})
	defer span.End()

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, s.fail(lc, span, domain.ErrEmptyQuery)
	}
	s.advance(lc, domain.QueryStateValidated)

	hits, err := s.retrieve(ctx, text)
	if err != nil {
		return nil, s.fail(lc, span, err)
	}
	s.advance(lc, domain.QueryStateRetrieved)

	var history []domain.ConversationEntry
	if s.useMemory(in.UserID) {
		history = s.memory.Get(in.UserID)
	}

	answer, err := s.generator.Generate(ctx, PromptContext{
		Chunks:  hits,
		History: history,
		Query:   text,
	})
	if err != nil {
		return nil, s.fail(lc, span, err)
	}
	s.advance(lc, domain.QueryStateGenerated)

	if s.useMemory(in.UserID) {
		s.remember(in.UserID, text, answer.Text)
	}
	s.advance(lc, domain.QueryStateMemoryUpdated)

	result := &domain.QueryResult{
		Answer:    answer.Text,
		Query:     text,
		UserID:    in.UserID,
		ChannelID: in.ChannelID,
		Timestamp: s.now().UTC(),
	}
	if in.IncludeSources {
		result.Sources = s.citations(hits)
	}
	s.advance(lc, domain.QueryStateCompleted)
	result.ProcessingTime = s.now().Sub(lc.ReceivedAt)

	return result, nil
}

func (s *QueryService) retrieve(ctx context.Context, text string) ([]domain.ScoredEntry, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, domain.RetrievalError(err)
	}
	if len(vectors) != 1 {
		return nil, domain.RetrievalError(errors.New("embedding provider returned no vector for the query"))
	}

	hits, err := s.index.Search(ctx, vectors[0], s.cfg.TopK)
	if err != nil {
		return nil, domain.RetrievalError(err)
	}
	if len(hits) == 0 && !s.cfg.AllowEmptyContext {
		return nil, domain.ErrNoRelevantContext
	}
	return hits, nil
}

func (s *QueryService) remember(userID, question, answer string) {
	for _, e := range []domain.ConversationEntry{
		domain.NewConversationEntry(userID, domain.RoleUser, question),
		domain.NewConversationEntry(userID, domain.RoleAssistant, answer),
	} {
		if err := s.memory.Append(userID, e); err != nil {
			s.counters.Inc(telemetry.CounterMemoryErrors)
			log.Printf("memory: failed to record %s turn for user %s: %v", e.Role, userID, err)
			return
		}
	}
}

func (s *QueryService) citations(hits []domain.ScoredEntry) []domain.SourceCitation {
	out := make([]domain.SourceCitation, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.SourceCitation{
			Excerpt:    textutil.Truncate(h.Entry.Chunk.Text, s.cfg.ExcerptChars),
			Source:     h.Entry.Chunk.Source,
			DocumentID: h.Entry.Chunk.DocumentID,
			ChunkID:    h.Entry.Chunk.ID,
			Score:      h.Score,
		})
	}
	return out
}

func (s *QueryService) useMemory(userID string) bool {
	return s.cfg.MemoryEnabled && userID != ""
}

func (s *QueryService) advance(lc *domain.QueryLifecycle, next domain.QueryState) {
	if err := lc.Advance(next); err != nil {
		log.Printf("query: %v", err)
	}
}

func (s *QueryService) fail(lc *domain.QueryLifecycle, span *telemetry.Span, err error) error {
	s.advance(lc, domain.QueryStateFailed)
	s.counters.Inc(telemetry.CounterQueriesFailed)
	s.counters.IncFailure(domain.ErrorCode(err))
	if !errors.Is(err, domain.ErrInvalidQuery) {
		span.SetError(err)
		log.Printf("query failed: %v", err)
	}
	return err
}

// ClearMemory forgets the conversation of userID. Clearing an unknown user
// is a no-op.
func (s *QueryService) ClearMemory(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingRequiredField
	}
	if s.memory != nil {
		s.memory.Clear(userID)
	}
	return nil
}

// Stats reports index contents, provider names, memory usage and counters.
func (s *QueryService) Stats(ctx context.Context) (*domain.Stats, error) {
	idx, err := s.index.Stats(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to read index stats", err)
	}

	stats := &domain.Stats{
		IndexedChunks:     idx.Chunks,
		IndexedDocuments:  idx.Documents,
		Dimensions:        idx.Dimensions,
		EmbeddingProvider: s.embedder.Name(),
		LLMProvider:       s.generator.ProviderName(),
		MemoryEnabled:     s.cfg.MemoryEnabled,
		MaxHistory:        s.cfg.MaxHistory,
		Telemetry:         s.counters.Snapshot(),
	}
	if s.memory != nil {
		stats.ActiveConversations = s.memory.ActiveConversations()
	}
	return stats, nil
}
