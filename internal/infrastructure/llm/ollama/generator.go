package ollama

import (
	"context"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// Generator renders final answers from retrieved proposal blocks.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, blocks []domain.TextBlock) (string, error) {
	return g.client.generateText(ctx, buildAnswerPrompt(question, blocks))
}
