package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// TurnRepository persists conversation turns. Turns are append-only; the
// sessions row only carries the monotonically increasing turn counter.
type TurnRepository struct {
	db *sql.DB
}

func NewTurnRepository(db *sql.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *TurnRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	current_turn INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_turns (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	turn INTEGER NOT NULL,
	question TEXT NOT NULL,
	intent JSONB,
	answer TEXT NOT NULL,
	evidence JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_turns_session ON conversation_turns(session_id, turn DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *TurnRepository) EnsureSession(ctx context.Context, sessionID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (session_id, current_turn, created_at, updated_at)
VALUES ($1, 0, $2, $2)
ON CONFLICT (session_id) DO NOTHING
`, sessionID, now)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

func (r *TurnRepository) NextTurn(ctx context.Context, sessionID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE sessions
SET current_turn = current_turn + 1, updated_at = $2
WHERE session_id = $1
RETURNING current_turn
`, sessionID, time.Now().UTC())

	var turn int
	if err := row.Scan(&turn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if ensureErr := r.EnsureSession(ctx, sessionID); ensureErr != nil {
				return 0, ensureErr
			}
			return r.NextTurn(ctx, sessionID)
		}
		return 0, fmt.Errorf("next turn: %w", err)
	}
	return turn, nil
}

func (r *TurnRepository) AppendTurn(ctx context.Context, turn domain.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	intentJSON, err := marshalIntent(turn.Intent)
	if err != nil {
		return err
	}
	evidenceJSON, err := json.Marshal(evidenceOrEmpty(turn.Evidence))
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversation_turns (id, session_id, turn, question, intent, answer, evidence, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, turn.ID, turn.SessionID, turn.Turn, turn.Question, intentJSON, turn.Answer, evidenceJSON, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *TurnRepository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, turn, question, intent, answer, evidence, created_at
FROM conversation_turns
WHERE session_id = $1
ORDER BY turn DESC
LIMIT $2
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ConversationTurn, 0, limit)
	for rows.Next() {
		var (
			turn         domain.ConversationTurn
			intentJSON   []byte
			evidenceJSON []byte
		)
		if err := rows.Scan(
			&turn.ID,
			&turn.SessionID,
			&turn.Turn,
			&turn.Question,
			&intentJSON,
			&turn.Answer,
			&evidenceJSON,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recent turn: %w", err)
		}
		if turn.Intent, err = unmarshalIntent(intentJSON); err != nil {
			return nil, err
		}
		if len(evidenceJSON) > 0 {
			if err := json.Unmarshal(evidenceJSON, &turn.Evidence); err != nil {
				return nil, fmt.Errorf("unmarshal evidence: %w", err)
			}
		}
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent turns: %w", err)
	}

	// Returned in descending order from SQL; reverse to keep chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type intentRecord struct {
	Operation   string `json:"operation"`
	QuoteID     string `json:"quote_id,omitempty"`
	Entity      string `json:"entity,omitempty"`
	Field       string `json:"field,omitempty"`
	FilterField string `json:"filter_field,omitempty"`
	FilterValue string `json:"filter_value,omitempty"`
	WantsNames  bool   `json:"wants_names,omitempty"`
}

func marshalIntent(intent *domain.ResolvedIntent) (interface{}, error) {
	if intent == nil {
		return nil, nil
	}
	data, err := json.Marshal(intentRecord{
		Operation:   string(intent.Operation),
		QuoteID:     intent.QuoteID,
		Entity:      intent.Entity,
		Field:       intent.Field,
		FilterField: intent.FilterField,
		FilterValue: intent.FilterValue,
		WantsNames:  intent.WantsNames,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal intent: %w", err)
	}
	return data, nil
}

func unmarshalIntent(data []byte) (*domain.ResolvedIntent, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rec intentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	return &domain.ResolvedIntent{
		Operation:   domain.Operation(rec.Operation),
		QuoteID:     rec.QuoteID,
		Entity:      rec.Entity,
		Field:       rec.Field,
		FilterField: rec.FilterField,
		FilterValue: rec.FilterValue,
		WantsNames:  rec.WantsNames,
	}, nil
}

func evidenceOrEmpty(evidence []string) []string {
	if evidence == nil {
		return []string{}
	}
	return evidence
}
