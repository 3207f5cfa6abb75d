package domain

import (
	"fmt"
	"time"
)

// Role identifies who produced a conversation entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationEntry is one turn of a user's conversation.
type ConversationEntry struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversationEntry creates a new ConversationEntry stamped with the current time
func NewConversationEntry(userID string, role Role, text string) ConversationEntry {
	return ConversationEntry{
		UserID:    userID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// ValidateConversationEntry validates a ConversationEntry
func ValidateConversationEntry(e ConversationEntry) error {
	if e.UserID == "" {
		return fmt.Errorf("conversation entry UserID is required")
	}
	if !IsValidRole(e.Role) {
		return fmt.Errorf("conversation entry Role is invalid: %s", e.Role)
	}
	return nil
}

// IsValidRole checks if a Role is valid
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	}
	return false
}
