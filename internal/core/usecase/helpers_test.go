package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
)

// testSnapshot builds a ten-record corpus: records 001-008 have CCTV
// installed, 009-010 do not. Record 001 is the named lookup target.
func testSnapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Records: make(map[string]*domain.Record),
		Schemas: make(map[string]domain.SectionSchema),
		Blocks:  make(map[string]domain.TextBlock),
	}

	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("MYJADEQT%03d", i)
		business := fmt.Sprintf("Business %02d", i)
		person := fmt.Sprintf("Owner %02d", i)
		if i == 1 {
			business = "Ja Assure IN"
			person = "Soh Boon"
		}
		cctv := "Yes"
		if i > 8 {
			cctv = "No"
		}
		addTestRecord(snap, id, business, person, map[string]map[string]string{
			"business_profile": {
				"business_name_label": business,
				"industry_id_label":   "Jewellery & Gold",
			},
			"cctv": {
				"do_you_have_cctv_installed_label": cctv,
				"number_of_cameras_label":          "4",
			},
			"alarm": {
				"do_you_have_alarm_label": "Yes",
			},
		})
	}
	return snap
}

func addTestRecord(snap *domain.Snapshot, id, business, person string, sections map[string]map[string]string) {
	rec := &domain.Record{
		QuoteID:      id,
		BusinessName: business,
		PersonName:   person,
		Sections:     make(map[string]domain.Section),
	}
	for name, fields := range sections {
		rec.Sections[name] = domain.Section{Name: name, Fields: fields}

		schema := snap.Schemas[name]
		schema.Name = name
		schema.Fields = mergeFields(schema.Fields, fields)
		snap.Schemas[name] = schema

		blockID := domain.BlockID(id, name)
		snap.Blocks[blockID] = domain.TextBlock{
			ID:      blockID,
			QuoteID: id,
			Section: name,
			Text:    "Proposal " + id + " " + name + " details",
		}
	}
	snap.Records[id] = rec
}

func mergeFields(existing []string, fields map[string]string) []string {
	set := make(map[string]struct{}, len(existing)+len(fields))
	for _, f := range existing {
		set[f] = struct{}{}
	}
	for f := range fields {
		set[f] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type fakeTurnStore struct {
	mu        sync.Mutex
	turns     map[string][]domain.ConversationTurn
	counters  map[string]int
	appendErr error
	recentErr error
	nextErr   error
}

func newFakeTurnStore() *fakeTurnStore {
	return &fakeTurnStore{
		turns:    make(map[string][]domain.ConversationTurn),
		counters: make(map[string]int),
	}
}

func (s *fakeTurnStore) AppendTurn(_ context.Context, turn domain.ConversationTurn) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

func (s *fakeTurnStore) RecentTurns(_ context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.turns[sessionID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]domain.ConversationTurn, len(all))
	copy(out, all)
	return out, nil
}

func (s *fakeTurnStore) NextTurn(_ context.Context, sessionID string) (int, error) {
	if s.nextErr != nil {
		return 0, s.nextErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[sessionID]++
	return s.counters[sessionID], nil
}

type fakeExtractor struct {
	raw string
	err error
}

func (f *fakeExtractor) ExtractIntentJSON(context.Context, string) (string, error) {
	return f.raw, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	hits      []domain.BlockHit
	searchErr error
	indexErr  error
	indexed   []domain.TextBlock
}

func (f *fakeIndex) IndexBlocks(_ context.Context, blocks []domain.TextBlock, _ [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = blocks
	return nil
}

func (f *fakeIndex) Search(context.Context, []float32, int) ([]domain.BlockHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateAnswer(context.Context, string, []domain.TextBlock) (string, error) {
	return f.text, f.err
}

func newTestEngine(
	entries []PredefinedEntry,
	store ports.ConversationStore,
	extractor ports.IntentExtractor,
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
) *ResolveEngine {
	formatter := NewFormatter()
	return NewResolveEngine(
		NewPredefinedMatcher(entries),
		NewAnalyticalResolver(formatter),
		NewStructuredLookup(formatter),
		NewIntentParser(extractor, 5),
		NewIntentExecutor(formatter),
		NewSemanticRetriever(&fakeEmbedder{}, index, generator, formatter, 0.5, 5, time.Second, time.Second),
		formatter,
		store,
		5,
		time.Second,
	)
}
