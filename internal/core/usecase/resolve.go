package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
)

// ResolveEngine orchestrates the resolution strategies in strict priority
// order: predefined match, deterministic analytical intent, structured
// quote-ID lookup, LLM-assisted intent parsing, semantic retrieval. The
// first confident result wins; a later strategy never overrides an earlier
// match. Resolve never fails to the caller: every internal failure degrades
// to a refusal with a reason.
type ResolveEngine struct {
	predefined *PredefinedMatcher
	analytical *AnalyticalResolver
	lookup     *StructuredLookup
	parser     *IntentParser
	executor   *IntentExecutor
	semantic   *SemanticRetriever
	formatter  *Formatter
	turns      ports.ConversationStore

	historyWindow int
	parseTimeout  time.Duration

	snapshot atomic.Pointer[domain.Snapshot]

	sessionMu sync.Mutex
	sessions  map[string]*sync.Mutex
}

func NewResolveEngine(
	predefined *PredefinedMatcher,
	analytical *AnalyticalResolver,
	lookup *StructuredLookup,
	parser *IntentParser,
	executor *IntentExecutor,
	semantic *SemanticRetriever,
	formatter *Formatter,
	turns ports.ConversationStore,
	historyWindow int,
	parseTimeout time.Duration,
) *ResolveEngine {
	if historyWindow <= 0 {
		historyWindow = 5
	}
	if parseTimeout <= 0 {
		parseTimeout = 20 * time.Second
	}
	return &ResolveEngine{
		predefined:    predefined,
		analytical:    analytical,
		lookup:        lookup,
		parser:        parser,
		executor:      executor,
		semantic:      semantic,
		formatter:     formatter,
		turns:         turns,
		historyWindow: historyWindow,
		parseTimeout:  parseTimeout,
		sessions:      make(map[string]*sync.Mutex),
	}
}

// SetSnapshot publishes a new immutable corpus snapshot. Readers switch
// atomically and never observe a half-updated index.
func (e *ResolveEngine) SetSnapshot(snap *domain.Snapshot) {
	e.snapshot.Store(snap)
}

// Ready reports whether a snapshot has been loaded, so a front end can
// refuse traffic until startup completes.
func (e *ResolveEngine) Ready() bool {
	return e.snapshot.Load() != nil
}

// Resolve answers one question for one session. Requests for the same
// session are serialized; different sessions proceed in parallel.
func (e *ResolveEngine) Resolve(ctx context.Context, question, sessionID string) *domain.Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return e.formatter.Refusal(domain.RefusalInputInvalid)
	}

	snap := e.snapshot.Load()
	if snap == nil {
		return e.formatter.Refusal(domain.RefusalUpstreamError)
	}

	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history := e.loadHistory(ctx, sessionID)
	answer, intent := e.resolveOnce(ctx, snap, question, history)
	e.recordTurn(ctx, sessionID, question, intent, answer)

	slog.Info("query_resolved",
		"session_id", sessionID,
		"strategy", answer.Strategy,
		"reason", answer.Reason,
		"evidence_count", len(answer.Evidence),
	)
	return answer
}

// resolveOnce folds the ordered strategy chain over the question.
func (e *ResolveEngine) resolveOnce(
	ctx context.Context,
	snap *domain.Snapshot,
	question string,
	history []domain.ConversationTurn,
) (*domain.Answer, *domain.ResolvedIntent) {
	if answer, ok := e.predefined.Match(snap, question); ok {
		return answer, nil
	}

	if answer, intent, ok := e.analytical.Resolve(snap, question); ok {
		return answer, intent
	}

	if answer, intent, ok := e.lookup.Resolve(snap, question); ok {
		return answer, intent
	}

	parseCtx, cancel := context.WithTimeout(ctx, e.parseTimeout)
	intent, outcome, err := e.parser.Parse(parseCtx, snap, question, history)
	cancel()

	switch outcome {
	case ParseOutOfScope:
		return e.formatter.Refusal(domain.RefusalOutOfScope), nil
	case ParseAmbiguous:
		return e.formatter.Refusal(domain.RefusalAmbiguous), nil
	case ParseMatched:
		if answer, ok := e.executor.Execute(snap, intent); ok {
			return answer, intent
		}
	case ParseFailed:
		// LLM unavailability is never fatal: fall through to retrieval.
		slog.Warn("intent_parse_failed", "error", err)
	}

	return e.semantic.Retrieve(ctx, snap, question), intent
}

func (e *ResolveEngine) loadHistory(ctx context.Context, sessionID string) []domain.ConversationTurn {
	history, err := e.turns.RecentTurns(ctx, sessionID, e.historyWindow)
	if err != nil {
		slog.Warn("history_load_failed", "session_id", sessionID, "error", err)
		return nil
	}
	return history
}

func (e *ResolveEngine) recordTurn(
	ctx context.Context,
	sessionID, question string,
	intent *domain.ResolvedIntent,
	answer *domain.Answer,
) {
	turnNo, err := e.turns.NextTurn(ctx, sessionID)
	if err != nil {
		slog.Warn("turn_sequence_failed", "session_id", sessionID, "error", err)
		return
	}

	turn := domain.ConversationTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Turn:      turnNo,
		Question:  question,
		Intent:    intent,
		Answer:    answer.Text,
		Evidence:  answer.Evidence,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.turns.AppendTurn(ctx, turn); err != nil {
		slog.Warn("turn_append_failed", "session_id", sessionID, "error", err)
	}
}

func (e *ResolveEngine) sessionLock(sessionID string) *sync.Mutex {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	lock, ok := e.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.sessions[sessionID] = lock
	}
	return lock
}
