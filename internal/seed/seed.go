// Package seed reads question bank files for import.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/examcoach/internal/store"
)

// bankFile is the YAML layout of a question bank.
type bankFile struct {
	Inserts   []insertEntry   `yaml:"inserts"`
	Questions []questionEntry `yaml:"questions"`
}

type insertEntry struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
}

type questionEntry struct {
	ID         int    `yaml:"id"`
	Insert     *int   `yaml:"insert"`
	Question   string `yaml:"question"`
	Marks      int    `yaml:"marks"`
	MarkScheme string `yaml:"mark_scheme"`
}

// Bank is a parsed question bank ready for store.QuestionRepo.Import.
type Bank struct {
	Inserts   []store.Insert
	Questions []store.Question
}

// LoadFromFile reads and validates the bank at path.
func LoadFromFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML question bank.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("no questions in bank")
	}

	bank := &Bank{}
	inserts := make(map[int]bool, len(f.Inserts))
	for _, in := range f.Inserts {
		if in.ID <= 0 {
			return nil, fmt.Errorf("insert id must be positive, got %d", in.ID)
		}
		if inserts[in.ID] {
			return nil, fmt.Errorf("duplicate insert id %d", in.ID)
		}
		inserts[in.ID] = true
		bank.Inserts = append(bank.Inserts, store.Insert{IID: in.ID, Text: in.Text})
	}

	seen := make(map[int]bool, len(f.Questions))
	for _, q := range f.Questions {
		switch {
		case q.ID <= 0:
			return nil, fmt.Errorf("question id must be positive, got %d", q.ID)
		case seen[q.ID]:
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		case q.Question == "":
			return nil, fmt.Errorf("question %d: text is required", q.ID)
		case q.Marks <= 0:
			return nil, fmt.Errorf("question %d: marks must be positive", q.ID)
		case q.Insert != nil && !inserts[*q.Insert]:
			return nil, fmt.Errorf("question %d: unknown insert %d", q.ID, *q.Insert)
		}
		seen[q.ID] = true
		bank.Questions = append(bank.Questions, store.Question{
			QID:        q.ID,
			IID:        q.Insert,
			Text:       q.Question,
			Marks:      q.Marks,
			MarkScheme: q.MarkScheme,
		})
	}
	return bank, nil
}
