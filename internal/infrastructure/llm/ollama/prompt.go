package ollama

import (
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// maxContextChars bounds the retrieved context at roughly 3000 tokens.
const maxContextChars = 12000

// The system instruction is hardcoded and never user-influenced. The model
// must answer only from the provided records or refuse.
const answerSystemInstruction = "You are an insurance data assistant. Answer ONLY from the proposal records " +
	"provided below. Do not infer, assume, extrapolate, or use any knowledge outside the provided context. " +
	"If the exact data needed to answer is not present, respond with exactly: Data not available in proposal records. " +
	"Be concise. Output plain text only. No markdown, no bullet points, no bold, no numbered lists."

func buildAnswerPrompt(question string, blocks []domain.TextBlock) string {
	texts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		texts = append(texts, block.Text)
	}
	context := truncateContext(strings.Join(texts, "\n\n"), maxContextChars)

	var b strings.Builder
	b.WriteString(answerSystemInstruction)
	b.WriteString("\n\n=== PROPOSAL RECORDS ===\n")
	b.WriteString(context)
	b.WriteString("\n=== END OF RECORDS ===\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// truncateContext keeps whole blocks while trimming to the character budget.
func truncateContext(context string, maxChars int) string {
	if len(context) <= maxChars {
		return context
	}

	parts := strings.Split(context, "\n\n")
	kept := make([]string, 0, len(parts))
	total := 0
	for _, part := range parts {
		if total+len(part)+2 > maxChars {
			break
		}
		kept = append(kept, part)
		total += len(part) + 2
	}
	if len(kept) == 0 && len(parts) > 0 {
		return parts[0][:maxChars]
	}
	return strings.Join(kept, "\n\n")
}
