package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
)

// SemanticRetriever embeds the question, queries the vector index for the
// top-K text blocks, and accepts the result set only if the best similarity
// score clears a fixed threshold. Below-threshold result sets are discarded
// wholesale: no answer is fabricated from weak evidence.
type SemanticRetriever struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	generator ports.AnswerGenerator
	formatter *Formatter

	scoreThreshold  float64
	topK            int
	retrieveTimeout time.Duration
	generateTimeout time.Duration
}

func NewSemanticRetriever(
	embedder ports.Embedder,
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	formatter *Formatter,
	scoreThreshold float64,
	topK int,
	retrieveTimeout, generateTimeout time.Duration,
) *SemanticRetriever {
	if topK <= 0 {
		topK = 5
	}
	if retrieveTimeout <= 0 {
		retrieveTimeout = 10 * time.Second
	}
	if generateTimeout <= 0 {
		generateTimeout = 20 * time.Second
	}
	return &SemanticRetriever{
		embedder:        embedder,
		index:           index,
		generator:       generator,
		formatter:       formatter,
		scoreThreshold:  scoreThreshold,
		topK:            topK,
		retrieveTimeout: retrieveTimeout,
		generateTimeout: generateTimeout,
	}
}

// Retrieve resolves the question through the vector index. The returned
// answer is always non-nil: a grounded semantic answer or a refusal.
func (r *SemanticRetriever) Retrieve(ctx context.Context, snap *domain.Snapshot, question string) *domain.Answer {
	hits, err := r.search(ctx, question)
	if err != nil {
		slog.Warn("semantic_search_failed", "error", err)
		return r.formatter.Refusal(domain.RefusalUpstreamError)
	}

	if !r.accept(hits) {
		return r.formatter.Refusal(domain.RefusalBelowThreshold)
	}

	blocks, evidence, err := resolveBlocks(snap, hits, r.scoreThreshold)
	if err != nil {
		// A hit that does not resolve to a record section is a bug signal,
		// logged loudly and surfaced only as a refusal.
		slog.Error("inconsistent_evidence", "error", err)
		return r.formatter.Refusal(domain.RefusalInconsistent)
	}
	if len(blocks) == 0 {
		return r.formatter.Refusal(domain.RefusalBelowThreshold)
	}

	genCtx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()
	text, err := r.generator.GenerateAnswer(genCtx, question, blocks)
	if err != nil {
		slog.Warn("semantic_generation_failed", "error", err)
		return r.formatter.Refusal(domain.RefusalUpstreamError)
	}

	return &domain.Answer{
		Text:     SanitizeLLMOutput(text),
		Strategy: domain.StrategySemantic,
		Evidence: evidence,
	}
}

func (r *SemanticRetriever) search(ctx context.Context, question string) ([]domain.BlockHit, error) {
	searchCtx, cancel := context.WithTimeout(ctx, r.retrieveTimeout)
	defer cancel()

	vector, err := r.embedder.EmbedQuery(searchCtx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(searchCtx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	// Ties broken by block ID ascending so identical queries always return
	// identical rankings.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].BlockID < hits[j].BlockID
	})
	return hits, nil
}

// accept gates the result set on the best similarity score.
func (r *SemanticRetriever) accept(hits []domain.BlockHit) bool {
	return len(hits) > 0 && hits[0].Score >= r.scoreThreshold
}

// resolveBlocks maps accepted hits back to snapshot text blocks. Every hit
// above the threshold must resolve to exactly one record section.
func resolveBlocks(snap *domain.Snapshot, hits []domain.BlockHit, threshold float64) ([]domain.TextBlock, []string, error) {
	blocks := make([]domain.TextBlock, 0, len(hits))
	seen := make(map[string]struct{})
	evidence := make([]string, 0, len(hits))

	for _, hit := range hits {
		if hit.Score < threshold {
			continue
		}
		block, ok := snap.Blocks[hit.BlockID]
		if !ok {
			return nil, nil, fmt.Errorf("block %q has no record section", hit.BlockID)
		}
		if _, exists := snap.Records[block.QuoteID]; !exists {
			return nil, nil, fmt.Errorf("block %q references missing record %q", hit.BlockID, block.QuoteID)
		}
		blocks = append(blocks, block)
		if _, dup := seen[block.QuoteID]; !dup {
			seen[block.QuoteID] = struct{}{}
			evidence = append(evidence, block.QuoteID)
		}
	}
	sort.Strings(evidence)
	return blocks, evidence, nil
}
