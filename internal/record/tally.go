// Package record keeps the student's score and proof images of graded
// attempts.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mathscan/internal/expression"
)

// Score is a correct/total pair.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (s Score) String() string {
	return fmt.Sprintf("Correct: %d / %d", s.Correct, s.Total)
}

// Tally persists scores as JSON: one overall score plus one per student.
type Tally struct {
	mu   sync.RWMutex
	path string
	data tallyFile

	// saveMu orders writes so the file always holds the newest snapshot.
	saveMu sync.Mutex
}

type tallyFile struct {
	Overall  Score            `json:"overall"`
	Students map[string]Score `json:"students"`
}

// LoadTally reads the tally at path. A missing file yields an empty tally.
func LoadTally(path string) (*Tally, error) {
	t := &Tally{path: path, data: tallyFile{Students: make(map[string]Score)}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tally: %w", err)
	}
	if err := json.Unmarshal(raw, &t.data); err != nil {
		return nil, fmt.Errorf("parse tally %s: %w", path, err)
	}
	if t.data.Students == nil {
		t.data.Students = make(map[string]Score)
	}
	return t, nil
}

// Record counts a graded verdict and saves. INVALID_FORMAT is not counted
// and reports false.
func (t *Tally) Record(student string, status expression.Status) (bool, error) {
	if status != expression.StatusCorrect && status != expression.StatusIncorrect {
		return false, nil
	}

	t.mu.Lock()
	add := func(s Score) Score {
		s.Total++
		if status == expression.StatusCorrect {
			s.Correct++
		}
		return s
	}
	t.data.Overall = add(t.data.Overall)
	t.data.Students[student] = add(t.data.Students[student])
	t.mu.Unlock()

	return true, t.Save()
}

// Overall returns the score over all students.
func (t *Tally) Overall() Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data.Overall
}

// Student returns one student's score.
func (t *Tally) Student(name string) Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data.Students[name]
}

// Save writes the tally to disk. The file is replaced by rename, so a reader
// never sees a partial write.
func (t *Tally) Save() error {
	t.saveMu.Lock()
	defer t.saveMu.Unlock()

	t.mu.RLock()
	data, err := json.MarshalIndent(t.data, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save tally: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save tally: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("save tally: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save tally: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("save tally: %w", err)
	}
	return nil
}
