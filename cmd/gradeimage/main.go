// Command gradeimage grades a math exercise photographed on paper and stored
// as an image file. The whole image is graded; no region crop is applied.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"mathscan/internal/app"
	"mathscan/internal/config"
	"mathscan/internal/frame"
	"mathscan/pkg/log"
)

func main() {
	imagePath := flag.String("image", "", "Path to exercise image (PNG, JPEG, TIFF, BMP or WebP)")
	envFile := flag.String("env", ".env", "Path to .env file")
	student := flag.String("student", "", "Student name attached to the attempt")
	engine := flag.String("engine", "", "Digit engine: onnx or tesseract")
	model := flag.String("model", "", "ONNX digit model path")
	dryRun := flag.Bool("dry-run", false, "Do not save a proof image or update the score")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: gradeimage -image <path> [-student name] [-engine onnx|tesseract] [-model path] [-dry-run]")
		os.Exit(1)
	}
	if !frame.IsSupportedFormat(*imagePath) {
		fmt.Fprintf(os.Stderr, "Unsupported image format: %s\n", *imagePath)
		os.Exit(1)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	if *student != "" {
		cfg.Student = *student
	}
	if *engine != "" {
		cfg.DigitEngine = *engine
	}
	if *model != "" {
		cfg.ModelPath = *model
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(log.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	a, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	if *dryRun {
		a.Grader.SetSink(nil)
	}

	img, err := frame.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Width(), img.Height())

	attempt, err := a.Grader.GradeImage(context.Background(), img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grading failed: %v\n", err)
		os.Exit(1)
	}
	defer attempt.Close()

	res := attempt.Result
	fmt.Printf("\nAttempt:    %s\n", attempt.ID)
	fmt.Printf("Student:    %s\n", attempt.Student)
	fmt.Printf("Expression: %q\n", res.Expression)
	fmt.Printf("Status:     %s\n", res.Status)
	if res.HasExpected {
		fmt.Printf("Expected:   %g\n", res.Expected)
	}
	if res.Reason != nil {
		fmt.Printf("Reason:     %v\n", res.Reason)
	}
	if attempt.Dropped > 0 {
		fmt.Printf("Dropped:    %d symbol(s)\n", attempt.Dropped)
	}
	fmt.Printf("\n%s\n", attempt.Message())
	if !*dryRun {
		fmt.Printf("%s\n", a.Tally.Student(attempt.Student))
	}
}
