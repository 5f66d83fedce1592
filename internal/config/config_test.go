package config

import "testing"

func TestLoadIncludesResolutionDefaults(t *testing.T) {
	t.Setenv("SEMANTIC_SCORE_THRESHOLD", "")
	t.Setenv("SEMANTIC_TOP_K", "")
	t.Setenv("HISTORY_WINDOW", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "")

	cfg := Load()
	if cfg.SemanticScoreThreshold != 0.5 {
		t.Fatalf("expected default score threshold 0.5, got %v", cfg.SemanticScoreThreshold)
	}
	if cfg.SemanticTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.SemanticTopK)
	}
	if cfg.HistoryWindow != 5 {
		t.Fatalf("expected default history window 5, got %d", cfg.HistoryWindow)
	}
	if cfg.LLMTimeoutSeconds != 20 {
		t.Fatalf("expected default llm timeout 20s, got %d", cfg.LLMTimeoutSeconds)
	}
}

func TestLoadParsesResolutionOverrides(t *testing.T) {
	t.Setenv("SEMANTIC_SCORE_THRESHOLD", "0.65")
	t.Setenv("SEMANTIC_TOP_K", "8")
	t.Setenv("HISTORY_WINDOW", "3")
	t.Setenv("EXCEL_SHEET", "tbl_SG")

	cfg := Load()
	if cfg.SemanticScoreThreshold != 0.65 {
		t.Fatalf("expected score threshold override, got %v", cfg.SemanticScoreThreshold)
	}
	if cfg.SemanticTopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.SemanticTopK)
	}
	if cfg.HistoryWindow != 3 {
		t.Fatalf("expected history window 3, got %d", cfg.HistoryWindow)
	}
	if cfg.ExcelSheet != "tbl_SG" {
		t.Fatalf("expected sheet override, got %q", cfg.ExcelSheet)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("SEMANTIC_SCORE_THRESHOLD", "not-a-number")
	t.Setenv("SEMANTIC_TOP_K", "many")

	cfg := Load()
	if cfg.SemanticScoreThreshold != 0.5 {
		t.Fatalf("expected fallback threshold, got %v", cfg.SemanticScoreThreshold)
	}
	if cfg.SemanticTopK != 5 {
		t.Fatalf("expected fallback top k, got %d", cfg.SemanticTopK)
	}
}
