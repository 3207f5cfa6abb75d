package domain

import (
	"fmt"
	"time"
)

// QueryState is a stage of the query lifecycle.
type QueryState string

const (
	QueryStateReceived      QueryState = "received"
	QueryStateValidated     QueryState = "validated"
	QueryStateRetrieved     QueryState = "retrieved"
	QueryStateGenerated     QueryState = "generated"
	QueryStateMemoryUpdated QueryState = "memory_updated"
	QueryStateCompleted     QueryState = "completed"
	QueryStateFailed        QueryState = "failed"
)

var queryTransitions = map[QueryState]QueryState{
	QueryStateReceived:      QueryStateValidated,
	QueryStateValidated:     QueryStateRetrieved,
	QueryStateRetrieved:     QueryStateGenerated,
	QueryStateGenerated:     QueryStateMemoryUpdated,
	QueryStateMemoryUpdated: QueryStateCompleted,
}

// IsTerminal reports whether no further transitions are allowed.
func (s QueryState) IsTerminal() bool {
	return s == QueryStateCompleted || s == QueryStateFailed
}

// CanTransition reports whether moving from s to next is allowed. Failed is
// reachable from every non-terminal state.
func (s QueryState) CanTransition(next QueryState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == QueryStateFailed {
		return true
	}
	return queryTransitions[s] == next
}

// QueryLifecycle tracks the state of a single query.
type QueryLifecycle struct {
	State      QueryState
	ReceivedAt time.Time
}

// NewQueryLifecycle starts a lifecycle in the Received state.
func NewQueryLifecycle(now time.Time) *QueryLifecycle {
	return &QueryLifecycle{State: QueryStateReceived, ReceivedAt: now}
}

// Advance moves the lifecycle to next.
func (l *QueryLifecycle) Advance(next QueryState) error {
	if !l.State.CanTransition(next) {
		return NewDomainError(ErrCodeInternalError,
			fmt.Sprintf("invalid query transition %s -> %s", l.State, next))
	}
	l.State = next
	return nil
}

// SourceCitation points to a chunk that contributed to an answer.
type SourceCitation struct {
	Excerpt    string  `json:"excerpt"`
	Source     string  `json:"source"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
}

// QueryResult is the answer to one query.
type QueryResult struct {
	Answer         string           `json:"answer"`
	Sources        []SourceCitation `json:"sources,omitempty"`
	Query          string           `json:"query"`
	UserID         string           `json:"user_id,omitempty"`
	ChannelID      string           `json:"channel_id,omitempty"`
	ProcessingTime time.Duration    `json:"processing_time_ns"`
	Timestamp      time.Time        `json:"timestamp"`
}

// IngestionReport summarizes one ingestion run.
type IngestionReport struct {
	DocumentsProcessed int      `json:"documents_processed"`
	DocumentsFailed    int      `json:"documents_failed"`
	ChunksCreated      int      `json:"chunks_created"`
	ChunksFailed       int      `json:"chunks_failed"`
	Errors             []string `json:"errors,omitempty"`
}

// Merge adds the counts of other into r.
func (r *IngestionReport) Merge(other IngestionReport) {
	r.DocumentsProcessed += other.DocumentsProcessed
	r.DocumentsFailed += other.DocumentsFailed
	r.ChunksCreated += other.ChunksCreated
	r.ChunksFailed += other.ChunksFailed
	r.Errors = append(r.Errors, other.Errors...)
}

// IndexStats describes the contents of a vector index.
type IndexStats struct {
	Chunks     int `json:"chunks"`
	Documents  int `json:"documents"`
	Dimensions int `json:"dimensions"`
}

// Stats is the aggregate system status.
type Stats struct {
	IndexedChunks       int              `json:"indexed_chunks"`
	IndexedDocuments    int              `json:"indexed_documents"`
	Dimensions          int              `json:"dimensions"`
	EmbeddingProvider   string           `json:"embedding_provider"`
	LLMProvider         string           `json:"llm_provider"`
	ActiveConversations int              `json:"active_conversations"`
	MemoryEnabled       bool             `json:"memory_enabled"`
	MaxHistory          int              `json:"max_history"`
	Telemetry           map[string]int64 `json:"telemetry,omitempty"`
}
