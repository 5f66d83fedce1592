package qa

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/usecase"
)

type entryFile struct {
	Entries []entry `yaml:"entries"`
}

type entry struct {
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Evidence []string `yaml:"evidence"`
}

// LoadEntries reads the curated question/answer table from a YAML file. Every
// entry must carry a question, an answer, and at least one evidence quote ID;
// a malformed entry fails the whole load because a silently dropped entry
// would change answers without anyone noticing.
func LoadEntries(path string) ([]usecase.PredefinedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read predefined qa file: %w", err)
	}

	var file entryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse predefined qa file: %w", err)
	}

	entries := make([]usecase.PredefinedEntry, 0, len(file.Entries))
	for i, e := range file.Entries {
		if e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("predefined qa entry %d: question and answer are required", i)
		}
		if len(e.Evidence) == 0 {
			return nil, fmt.Errorf("predefined qa entry %d (%q): evidence is required", i, e.Question)
		}
		entries = append(entries, usecase.PredefinedEntry{
			Question: e.Question,
			Answer:   e.Answer,
			Evidence: e.Evidence,
		})
	}
	return entries, nil
}
