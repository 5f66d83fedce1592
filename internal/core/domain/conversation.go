package domain

import "time"

// ConversationTurn records one resolved question within a session. Turns are
// append-only and used solely for reference resolution in later questions.
type ConversationTurn struct {
	ID        string
	SessionID string
	Turn      int
	Question  string
	Intent    *ResolvedIntent
	Answer    string
	Evidence  []string
	CreatedAt time.Time
}
