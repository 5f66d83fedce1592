package ports

import (
	"context"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// RecordSource loads the proposal corpus from source data. Load failure at
// startup is fatal to the process.
type RecordSource interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// Embedder builds vectors for text blocks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex indexes text blocks and performs scored similarity search.
type VectorIndex interface {
	IndexBlocks(ctx context.Context, blocks []domain.TextBlock, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.BlockHit, error)
}

// AnswerGenerator creates grounded answer text from retrieved blocks.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, blocks []domain.TextBlock) (string, error)
}

// IntentExtractor asks the LLM for a structured intent in JSON form. The
// caller validates the output against known vocabularies.
type IntentExtractor interface {
	ExtractIntentJSON(ctx context.Context, prompt string) (string, error)
}

// ConversationStore persists per-session turns. Turns are append-only.
type ConversationStore interface {
	AppendTurn(ctx context.Context, turn domain.ConversationTurn) error
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error)
	NextTurn(ctx context.Context, sessionID string) (int, error)
}

// ReindexQueue publishes/consumes corpus rebuild events. Requested events
// fan in to one worker; completed events fan out to every API instance so
// each one reloads its snapshot.
type ReindexQueue interface {
	PublishReindexRequested(ctx context.Context, requestID string) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context, string) error) error
	PublishReindexCompleted(ctx context.Context, requestID string) error
	SubscribeReindexCompleted(ctx context.Context, handler func(context.Context, string) error) error
}
