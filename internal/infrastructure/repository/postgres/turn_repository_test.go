package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

func TestTurnRepositoryAppendTurn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewTurnRepository(db)
	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs("turn-1", "sess-1", 3, "how many have cctv?", sqlmock.AnyArg(), "8 proposal(s) match the criteria.", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.AppendTurn(context.Background(), domain.ConversationTurn{
		ID:        "turn-1",
		SessionID: "sess-1",
		Turn:      3,
		Question:  "how many have cctv?",
		Intent: &domain.ResolvedIntent{
			Operation:   domain.OpCount,
			FilterField: "do_you_have_cctv_installed_label",
			FilterValue: "Yes",
		},
		Answer:   "8 proposal(s) match the criteria.",
		Evidence: []string{"MYJADEQT001"},
	})
	if err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTurnRepositoryRecentTurnsChronologicalOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewTurnRepository(db)
	rows := sqlmock.NewRows([]string{"id", "session_id", "turn", "question", "intent", "answer", "evidence", "created_at"}).
		AddRow("turn-2", "sess-1", 2, "their names?", nil, "Ja Assure IN (MYJADEQT001)", []byte(`["MYJADEQT001"]`), time.Now()).
		AddRow("turn-1", "sess-1", 1, "how many have cctv?", []byte(`{"operation":"count","filter_field":"do_you_have_cctv_installed_label","filter_value":"Yes"}`), "1 proposal(s) match the criteria.", []byte(`["MYJADEQT001"]`), time.Now())

	mock.ExpectQuery("FROM conversation_turns").
		WithArgs("sess-1", 5).
		WillReturnRows(rows)

	turns, err := repo.RecentTurns(context.Background(), "sess-1", 5)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Turn != 1 || turns[1].Turn != 2 {
		t.Fatalf("turns not in chronological order: %d, %d", turns[0].Turn, turns[1].Turn)
	}
	if turns[0].Intent == nil {
		t.Fatal("intent not decoded")
	}
	if turns[0].Intent.FilterField != "do_you_have_cctv_installed_label" {
		t.Errorf("FilterField = %q", turns[0].Intent.FilterField)
	}
	if turns[1].Intent != nil {
		t.Errorf("expected nil intent for turn without one, got %+v", turns[1].Intent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTurnRepositoryRecentTurnsZeroLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewTurnRepository(db)
	turns, err := repo.RecentTurns(context.Background(), "sess-1", 0)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if turns != nil {
		t.Fatalf("expected nil for zero limit, got %v", turns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTurnRepositoryNextTurnEnsuresMissingSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewTurnRepository(db)
	mock.ExpectQuery("UPDATE sessions").
		WithArgs("sess-new", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"current_turn"}))
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("sess-new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE sessions").
		WithArgs("sess-new", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"current_turn"}).AddRow(1))

	turn, err := repo.NextTurn(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("NextTurn() error = %v", err)
	}
	if turn != 1 {
		t.Fatalf("turn = %d, want 1", turn)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
