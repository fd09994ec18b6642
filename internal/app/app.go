// Package app assembles the grading pipeline from configuration: digit
// engine, live ROI cell, grader and result recording.
package app

import (
	"fmt"
	"time"

	"mathscan/internal/classify"
	"mathscan/internal/config"
	"mathscan/internal/pipeline"
	"mathscan/internal/record"
	"mathscan/internal/vision"
	"mathscan/pkg/log"

	"github.com/sirupsen/logrus"
)

// modelCheckInterval is how often the ONNX model file is polled.
const modelCheckInterval = 2 * time.Second

// App holds the long-lived pieces shared by the commands.
type App struct {
	Config config.Config
	Logger *logrus.Logger
	Params vision.Params

	Cell   *pipeline.ROICell
	Grader *pipeline.Grader
	Tally  *record.Tally
	Proofs *record.ProofWriter

	digits  *classify.Swappable
	watcher *ModelWatcher
}

// New opens the configured digit engine and wires the grader to the tally
// and proof writer.
func New(cfg config.Config, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}

	engine, err := classify.OpenEngine(cfg.DigitEngine, cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	tally, err := record.LoadTally(cfg.TallyPath)
	if err != nil {
		classify.CloseEngine(engine)
		return nil, err
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Params: vision.DefaultParams().WithThresholds(cfg.LiveThreshold, cfg.SegmentThreshold),
		Cell:   &pipeline.ROICell{},
		Tally:  tally,
		Proofs: record.NewProofWriter(cfg.ProofDir),
		digits: classify.NewSwappable(engine),
	}

	a.Grader = pipeline.NewGrader(a.Cell, classify.New(a.digits), a.Params, logger)
	a.Grader.SetStudent(cfg.Student)
	a.Grader.SetSink(&record.Recorder{Tally: a.Tally, Proofs: a.Proofs})

	if cfg.DigitEngine == classify.EngineONNX {
		a.watchModel(cfg.ModelPath)
	}

	logger.WithFields(log.Fields{
		"engine":  cfg.DigitEngine,
		"student": cfg.Student,
		"score":   tally.Overall().String(),
	}).Info("mathscan ready")
	return a, nil
}

// Analyzer returns a live analyzer publishing to the app's ROI cell.
func (a *App) Analyzer(overlay pipeline.OverlayRenderer) *pipeline.Analyzer {
	return pipeline.NewAnalyzer(a.Cell, a.Params, overlay, a.Logger)
}

func (a *App) watchModel(path string) {
	w := NewModelWatcher(path, modelCheckInterval)
	if w == nil {
		return
	}
	w.OnChange(func(path string) {
		a.ReloadModel(path)
	})
	w.Start()
	a.watcher = w
}

// ReloadModel loads the ONNX model at path and swaps it in. On failure the
// current model stays.
func (a *App) ReloadModel(path string) error {
	engine, err := classify.NewONNXClassifier(path)
	if err != nil {
		a.Logger.WithError(err).Warn("model reload failed, keeping current model")
		return err
	}
	if err := classify.CloseEngine(a.digits.Swap(engine)); err != nil {
		a.Logger.WithError(err).Warn("closing previous model")
	}
	a.Logger.WithField("path", path).Info("digit model reloaded")
	return nil
}

// Close stops the model watcher and releases the digit engine.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if err := a.digits.Close(); err != nil {
		return fmt.Errorf("close digit engine: %w", err)
	}
	return nil
}
