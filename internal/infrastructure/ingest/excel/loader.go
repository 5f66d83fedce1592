package excel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// Section columns of the source workbook. Each cell holds a JSON object (or
// array for claim history) describing one sub-structure of the proposal.
var sectionColumns = []string{
	"business_profile",
	"sum_assured",
	"physical_setup",
	"cctv",
	"door_access",
	"alarm",
	"safe",
	"strong_room",
	"display_showcases",
	"display_counters",
	"counter_show_case",
	"transit_and_gaurds",
	"records_keeping",
	"additional_details",
	"add_on_coverage",
	"claim_history",
	"premise_sub_limit",
	"display_window",
	"summary_coverage_values",
}

// Plain value columns promoted to single-field sections.
var simpleValueColumns = map[string]string{
	"shop_lifting": "shop_lifting_label",
}

var sectionTitles = map[string]string{
	"business_profile":   "Business Profile",
	"cctv":               "CCTV Security",
	"transit_and_gaurds": "Transit and Guards",
	"claim_history":      "Claim History",
}

// Loader reads the proposal corpus from the source workbook and produces an
// immutable snapshot: records, schemas, and text blocks.
type Loader struct {
	path  string
	sheet string
}

func NewLoader(path, sheet string) *Loader {
	return &Loader{path: path, sheet: sheet}
}

func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(l.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", l.sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", l.sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	if _, ok := header["quote_id"]; !ok {
		return nil, fmt.Errorf("sheet %q is missing quote_id column", l.sheet)
	}

	snap := &domain.Snapshot{
		Records: make(map[string]*domain.Record),
		Schemas: make(map[string]domain.SectionSchema),
		Blocks:  make(map[string]domain.TextBlock),
	}
	schemaFields := make(map[string]map[string]struct{})

	for _, row := range rows[1:] {
		rec, err := parseRow(header, row, schemaFields)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		snap.Records[rec.QuoteID] = rec
		for name, section := range rec.Sections {
			block := domain.TextBlock{
				ID:      domain.BlockID(rec.QuoteID, name),
				QuoteID: rec.QuoteID,
				Section: name,
				Text:    BuildSectionText(rec.QuoteID, section),
			}
			if block.Text != "" {
				snap.Blocks[block.ID] = block
			}
		}
	}

	for name, fields := range schemaFields {
		sorted := make([]string, 0, len(fields))
		for field := range fields {
			sorted = append(sorted, field)
		}
		sort.Strings(sorted)
		snap.Schemas[name] = domain.SectionSchema{
			Name:   name,
			Title:  sectionTitle(name),
			Fields: sorted,
			List:   name == "claim_history",
		}
	}

	if len(snap.Records) == 0 {
		return nil, fmt.Errorf("no records loaded from %q", l.path)
	}
	return snap, nil
}

func parseRow(header map[string]int, row []string, schemaFields map[string]map[string]struct{}) (*domain.Record, error) {
	quoteID := strings.ToUpper(strings.TrimSpace(cell(header, row, "quote_id")))
	if quoteID == "" {
		return nil, nil
	}

	rec := &domain.Record{
		QuoteID:      quoteID,
		PersonName:   strings.TrimSpace(cell(header, row, "user_name")),
		RiskLocation: strings.TrimSpace(cell(header, row, "risk_location")),
		Sections:     make(map[string]domain.Section),
	}

	for _, name := range sectionColumns {
		raw := cell(header, row, name)
		section, ok, err := parseSectionCell(name, raw)
		if err != nil {
			return nil, fmt.Errorf("record %s section %s: %w", quoteID, name, err)
		}
		if !ok {
			continue
		}
		rec.Sections[name] = section
		collectSchemaFields(schemaFields, name, section)
	}

	for column, field := range simpleValueColumns {
		raw := strings.TrimSpace(cell(header, row, column))
		if raw == "" {
			continue
		}
		section := domain.Section{
			Name:   column,
			Fields: map[string]string{field: decodeField(field, raw)},
		}
		rec.Sections[column] = section
		collectSchemaFields(schemaFields, column, section)
	}

	if profile, ok := rec.Sections["business_profile"]; ok {
		rec.BusinessName = profile.Fields["business_name_label"]
	}
	return rec, nil
}

// parseSectionCell parses one JSON cell into a decoded section. Empty cells
// and JSON nulls are skipped, not errors: sparse failures on non-empty cells
// are surfaced because silently dropping a section would break evidence.
func parseSectionCell(name, raw string) (domain.Section, bool, error) {
	cleaned := cleanJSONCell(raw)
	if cleaned == "" {
		return domain.Section{}, false, nil
	}

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return domain.Section{}, false, fmt.Errorf("parse json cell: %w", err)
	}

	switch v := value.(type) {
	case map[string]any:
		section := domain.Section{Name: name, Fields: make(map[string]string)}
		for field, fieldValue := range v {
			if nested, ok := fieldValue.([]any); ok {
				section.Items = append(section.Items, flattenItems(nested)...)
				continue
			}
			s := scalarString(fieldValue)
			if s == "" {
				continue
			}
			section.Fields[field] = decodeField(field, s)
		}
		if len(section.Fields) == 0 && len(section.Items) == 0 {
			return domain.Section{}, false, nil
		}
		return section, true, nil
	case []any:
		section := domain.Section{Name: name, Items: flattenItems(v)}
		if len(section.Items) == 0 {
			return domain.Section{}, false, nil
		}
		return section, true, nil
	default:
		return domain.Section{}, false, nil
	}
}

func flattenItems(items []any) []map[string]string {
	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields := make(map[string]string, len(obj))
		for field, value := range obj {
			s := scalarString(value)
			if s == "" {
				continue
			}
			fields[field] = decodeField(field, s)
		}
		if len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}

// cleanJSONCell normalizes the quirks the spreadsheet export leaves behind:
// BOM markers, stray whitespace, and textual null placeholders.
func cleanJSONCell(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	switch strings.ToLower(s) {
	case "", "null", "nan", "none", "{}", "[]":
		return ""
	}
	return s
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(v)
		if s == "-1" || s == "0" {
			return ""
		}
		return s
	case float64:
		if v == -1 || v == 0 {
			return ""
		}
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func collectSchemaFields(schemaFields map[string]map[string]struct{}, name string, section domain.Section) {
	set, ok := schemaFields[name]
	if !ok {
		set = make(map[string]struct{})
		schemaFields[name] = set
	}
	for field := range section.Fields {
		set[field] = struct{}{}
	}
	for _, item := range section.Items {
		for field := range item {
			set[field] = struct{}{}
		}
	}
}

func sectionTitle(name string) string {
	if title, ok := sectionTitles[name]; ok {
		return title
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func cell(header map[string]int, row []string, column string) string {
	idx, ok := header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
