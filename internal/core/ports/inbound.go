package ports

import (
	"context"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// QueryResolver is the inbound contract for question resolution. Resolve
// never returns an error for per-request failures: everything degrades to a
// refusal answer with a reason category.
type QueryResolver interface {
	Resolve(ctx context.Context, question, sessionID string) *domain.Answer
	Ready() bool
}

// SnapshotRebuilder is the inbound contract for out-of-band reindexing. It
// rebuilds the corpus from source data, reindexes text blocks, and publishes
// the new snapshot atomically.
type SnapshotRebuilder interface {
	Rebuild(ctx context.Context) (*domain.Snapshot, error)
}
