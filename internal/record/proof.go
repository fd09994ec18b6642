package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mathscan/internal/expression"
	"mathscan/internal/pipeline"

	"gocv.io/x/gocv"
)

// ProofPrefix starts every proof image file name.
const ProofPrefix = "MATHSCAN_"

// ProofWriter saves the cropped image of each graded attempt as a JPEG.
type ProofWriter struct {
	Dir     string
	Quality int
}

// NewProofWriter writes into dir with JPEG quality 90.
func NewProofWriter(dir string) *ProofWriter {
	return &ProofWriter{Dir: dir, Quality: 90}
}

// ProofName returns MATHSCAN_<student>_<yyyyMMdd_HHmmss>_<Correct|Incorrect>.jpg.
// Spaces and path separators in the student name become underscores.
func ProofName(student string, at time.Time, status expression.Status) string {
	result := "Incorrect"
	if status == expression.StatusCorrect {
		result = "Correct"
	}
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, student)
	return fmt.Sprintf("%s%s_%s_%s.jpg", ProofPrefix, name, at.Format("20060102_150405"), result)
}

// Write saves a proof for a graded attempt and returns its path. Attempts
// that were not graded produce no file and an empty path.
func (w *ProofWriter) Write(a *pipeline.Attempt) (string, error) {
	if !a.Result.Graded() {
		return "", nil
	}
	if a.Image.Empty() {
		return "", fmt.Errorf("attempt %s has no image", a.ID)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create proof dir: %w", err)
	}

	path := filepath.Join(w.Dir, ProofName(a.Student, a.Time, a.Result.Status))
	if ok := gocv.IMWriteWithParams(path, a.Image.Mat(), []int{int(gocv.IMWriteJpegQuality), w.Quality}); !ok {
		return "", fmt.Errorf("failed to write %s", path)
	}
	return path, nil
}

// List returns the proof images in Dir, newest first.
func (w *ProofWriter) List() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type proof struct {
		path string
		mod  time.Time
	}
	var proofs []proof
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), ProofPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		proofs = append(proofs, proof{path: filepath.Join(w.Dir, e.Name()), mod: info.ModTime()})
	}
	sort.SliceStable(proofs, func(i, j int) bool {
		return proofs[i].mod.After(proofs[j].mod)
	})

	out := make([]string, len(proofs))
	for i, p := range proofs {
		out[i] = p.path
	}
	return out, nil
}

// Recorder is the pipeline.ResultSink that updates the tally and saves a
// proof for every graded attempt. Either part may be nil.
type Recorder struct {
	Tally  *Tally
	Proofs *ProofWriter
}

// Accept implements pipeline.ResultSink.
func (r *Recorder) Accept(ctx context.Context, a *pipeline.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Proofs != nil {
		if _, err := r.Proofs.Write(a); err != nil {
			return fmt.Errorf("proof: %w", err)
		}
	}
	if r.Tally != nil {
		if _, err := r.Tally.Record(a.Student, a.Result.Status); err != nil {
			return fmt.Errorf("tally: %w", err)
		}
	}
	return nil
}
