package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
)

// RebuildUseCase performs the full-replace corpus rebuild: load records from
// source data, embed every text block, reindex, and hand back the new
// snapshot for atomic publication.
type RebuildUseCase struct {
	source   ports.RecordSource
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewRebuildUseCase(source ports.RecordSource, embedder ports.Embedder, index ports.VectorIndex) *RebuildUseCase {
	return &RebuildUseCase{source: source, embedder: embedder, index: index}
}

func (uc *RebuildUseCase) Rebuild(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := uc.source.Load(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamUnavailable, "load records", err)
	}

	blocks := make([]domain.TextBlock, 0, len(snap.Blocks))
	for _, block := range snap.Blocks {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })

	texts := make([]string, len(blocks))
	for i, block := range blocks {
		texts[i] = block.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed blocks: %w", err)
	}
	if len(vectors) != len(blocks) {
		return nil, fmt.Errorf("embedding count mismatch: %d blocks, %d vectors", len(blocks), len(vectors))
	}

	if err := uc.index.IndexBlocks(ctx, blocks, vectors); err != nil {
		return nil, fmt.Errorf("index blocks: %w", err)
	}
	return snap, nil
}
