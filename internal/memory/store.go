// Package memory keeps a bounded, per-user window of recent conversation turns.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// Config bounds what the store retains.
type Config struct {
	// MaxHistory is the number of entries kept per user. Older entries are
	// evicted first.
	MaxHistory int
	// MaxAge hides and eventually drops entries older than this. Zero keeps
	// entries until they are evicted by MaxHistory.
	MaxAge time.Duration
	// SessionTimeout drops a whole conversation after this much inactivity.
	SessionTimeout time.Duration
}

// DefaultConfig provides sane defaults for conversation memory.
func DefaultConfig() Config {
	return Config{
		MaxHistory:     10,
		SessionTimeout: time.Hour,
	}
}

type conversation struct {
	mu      sync.Mutex
	entries []domain.ConversationEntry
	// cleared is set under mu when Clear retires the conversation. Writers
	// holding a retired conversation must look it up again.
	cleared bool
}

// Store is a ConversationMemory backed by an expiring cache. Each user has
// its own lock, so users only contend on the cache lookup.
type Store struct {
	cfg   Config
	cache *cache.Cache
	now   func() time.Time
}

// NewStore creates a new Store instance
func NewStore(cfg Config) (*Store, error) {
	if cfg.MaxHistory <= 0 {
		return nil, domain.ConfigurationError("max history must be positive, got %d", cfg.MaxHistory)
	}
	if cfg.MaxAge < 0 {
		return nil, domain.ConfigurationError("max age cannot be negative")
	}

	expiration := cfg.SessionTimeout
	cleanup := cfg.SessionTimeout
	if expiration <= 0 {
		expiration = cache.NoExpiration
		cleanup = 0
	}
	return &Store{
		cfg:   cfg,
		cache: cache.New(expiration, cleanup),
		now:   time.Now,
	}, nil
}

// Append records entry as the newest turn of userID's conversation.
func (s *Store) Append(userID string, entry domain.ConversationEntry) error {
	if entry.UserID == "" {
		entry.UserID = userID
	}
	if entry.UserID != userID {
		return domain.NewDomainError(domain.ErrCodeInvalidArgument, "entry belongs to a different user")
	}
	if err := domain.ValidateConversationEntry(entry); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInvalidArgument, "invalid conversation entry", err)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}

	for {
		conv := s.conversation(userID)
		conv.mu.Lock()
		if conv.cleared {
			conv.mu.Unlock()
			continue
		}
		conv.entries = append(conv.entries, entry)
		if n := len(conv.entries) - s.cfg.MaxHistory; n > 0 {
			clear(conv.entries[:n])
			conv.entries = conv.entries[n:]
		}
		// Refresh the idle timer while still holding mu so a concurrent
		// Clear cannot be undone by this write.
		s.cache.SetDefault(userID, conv)
		conv.mu.Unlock()
		return nil
	}
}

// Get returns a copy of userID's retained entries, oldest first. Unknown
// users get an empty slice.
func (s *Store) Get(userID string) []domain.ConversationEntry {
	v, ok := s.cache.Get(userID)
	if !ok {
		return []domain.ConversationEntry{}
	}
	conv := v.(*conversation)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	if conv.cleared {
		return []domain.ConversationEntry{}
	}
	if s.cfg.MaxAge > 0 {
		cutoff := s.now().Add(-s.cfg.MaxAge)
		i := 0
		for i < len(conv.entries) && conv.entries[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			clear(conv.entries[:i])
			conv.entries = conv.entries[i:]
		}
	}
	return slices.Clone(conv.entries)
}

// Clear forgets userID's conversation. Clearing an unknown user is a no-op.
func (s *Store) Clear(userID string) {
	for {
		v, ok := s.cache.Get(userID)
		if !ok {
			return
		}
		conv := v.(*conversation)

		conv.mu.Lock()
		conv.entries = nil
		conv.cleared = true
		// The key may have expired and been recreated since the lookup.
		if cur, ok := s.cache.Get(userID); !ok || cur == conv {
			s.cache.Delete(userID)
			conv.mu.Unlock()
			return
		}
		conv.mu.Unlock()
	}
}

// ActiveConversations returns the number of conversations that have not
// expired.
func (s *Store) ActiveConversations() int {
	return len(s.cache.Items())
}

// MaxHistory returns the per-user entry limit.
func (s *Store) MaxHistory() int {
	return s.cfg.MaxHistory
}

func (s *Store) conversation(userID string) *conversation {
	if v, ok := s.cache.Get(userID); ok {
		return v.(*conversation)
	}
	conv := &conversation{}
	if err := s.cache.Add(userID, conv, cache.DefaultExpiration); err != nil {
		// Another goroutine created it first.
		if v, ok := s.cache.Get(userID); ok {
			return v.(*conversation)
		}
		s.cache.SetDefault(userID, conv)
	}
	return conv
}
