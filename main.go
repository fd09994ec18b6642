// Package main runs the live grading app: a camera preview with the detected
// exercise outlined. Space grades the exercise in view, q quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathscan/internal/app"
	"mathscan/internal/camera"
	"mathscan/internal/config"
	"mathscan/internal/pipeline"
	"mathscan/internal/version"
	"mathscan/pkg/log"
)

const (
	appTitle = "MathScan"

	keySpace = 32
	keyQuit  = 'q'
	keyEsc   = 27

	statusTTL = 3 * time.Second
)

func main() {
	envFile := flag.String("env", ".env", "Path to .env file")
	student := flag.String("student", "", "Student name attached to attempts")
	device := flag.Int("device", -1, "Camera device index (overrides MATHSCAN_CAMERA_DEVICE)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	if *student != "" {
		cfg.Student = *student
	}
	if *device >= 0 {
		cfg.CameraDevice = *device
	}

	logger := log.NewLogger(log.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Infof("Starting %s", version.String())

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}
	defer a.Close()

	cam, err := camera.Open(cfg.CameraDevice, cfg.AnalysisWidth)
	if err != nil {
		logger.WithError(err).Fatal("camera unavailable")
	}
	defer cam.Close()

	overlay := camera.NewOverlay(appTitle)
	defer overlay.Close()
	overlay.SetStatus(a.Tally.Student(cfg.Student).String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := a.Analyzer(overlay)
	go func() {
		if err := analyzer.Run(ctx, cam); err != nil {
			logger.WithError(err).Error("live analysis stopped")
			stop()
		}
	}()

	// The window must be driven from the main goroutine.
	var statusUntil time.Time
	for ctx.Err() == nil {
		preview := cam.Preview()
		key := overlay.Show(preview, 30)
		preview.Close()

		if !statusUntil.IsZero() && time.Now().After(statusUntil) {
			overlay.SetStatus(a.Tally.Student(cfg.Student).String())
			statusUntil = time.Time{}
		}

		switch key {
		case keyQuit, keyEsc:
			stop()
		case keySpace:
			overlay.SetStatus(grade(ctx, a, cam))
			statusUntil = time.Now().Add(statusTTL)
		}
	}
	logger.Info("bye")
}

// grade runs one capture and returns the message for the student.
func grade(ctx context.Context, a *app.App, cam *camera.Camera) string {
	attempt, err := a.Grader.GradeCapture(ctx, cam)
	switch {
	case errors.Is(err, pipeline.ErrNoRegionDetected):
		return pipeline.NoRegionMessage
	case err != nil:
		a.Logger.WithError(err).Error("grading failed")
		return "Capture failed, try again."
	}
	defer attempt.Close()
	return attempt.Message()
}
