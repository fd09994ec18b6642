// Package config loads mathscan settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "MATHSCAN_"

// Config holds process settings. Vision thresholds are mirrored into
// vision.Params by the caller.
type Config struct {
	// Digit engine: "onnx" (model file) or "tesseract".
	DigitEngine string `validate:"oneof=onnx tesseract"`
	ModelPath   string `validate:"required_if=DigitEngine onnx"`

	LiveThreshold    int `validate:"gte=0,lte=255"`
	SegmentThreshold int `validate:"gte=0,lte=255"`

	CameraDevice  int `validate:"gte=0"`
	AnalysisWidth int `validate:"gt=0"`

	Student   string
	ProofDir  string
	TallyPath string

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DigitEngine:      "onnx",
		ModelPath:        "./models/mnist.onnx",
		LiveThreshold:    125,
		SegmentThreshold: 120,
		CameraDevice:     0,
		AnalysisWidth:    480,
		Student:          "N/A",
		ProofDir:         "./proofs",
		TallyPath:        "./mathscan-tally.json",
		LogLevel:         "info",
	}
}

// Load reads envFile (if present) into the environment, overlays MATHSCAN_*
// variables on Default() and validates the result. A missing envFile is not
// an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.DigitEngine = getEnv("DIGIT_ENGINE", cfg.DigitEngine)
	cfg.ModelPath = getEnv("MODEL_PATH", cfg.ModelPath)
	cfg.Student = getEnv("STUDENT", cfg.Student)
	cfg.ProofDir = getEnv("PROOF_DIR", cfg.ProofDir)
	cfg.TallyPath = getEnv("TALLY_PATH", cfg.TallyPath)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.LiveThreshold, err = getEnvInt("LIVE_THRESHOLD", cfg.LiveThreshold); err != nil {
		return Config{}, err
	}
	if cfg.SegmentThreshold, err = getEnvInt("SEGMENT_THRESHOLD", cfg.SegmentThreshold); err != nil {
		return Config{}, err
	}
	if cfg.CameraDevice, err = getEnvInt("CAMERA_DEVICE", cfg.CameraDevice); err != nil {
		return Config{}, err
	}
	if cfg.AnalysisWidth, err = getEnvInt("ANALYSIS_WIDTH", cfg.AnalysisWidth); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(envPrefix + key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}
