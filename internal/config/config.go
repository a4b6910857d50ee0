// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/readalongapp/digitizer/internal/tuning"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Intake  IntakeConfig
	Extract ExtractConfig
	Select  SelectConfig
	OCR     OCRConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage paths for the job journal and output artifacts.
type DataConfig struct {
	// BasePath is the root data directory; journal and outputs live under it.
	BasePath string
	// OutputPath is where digitized books are written (default: {base}/books).
	OutputPath string
}

// IntakeConfig holds capture intake configuration.
type IntakeConfig struct {
	// InboxPath is watched for new capture videos and photo archives.
	// Empty disables the watcher (one-shot CLI use).
	InboxPath string
}

// ExtractConfig holds frame extraction configuration.
type ExtractConfig struct {
	// FPS is the sampling rate used when extracting frames from video.
	FPS int
	// Format is the still-image format ffmpeg writes (default: jpg).
	Format string
	// FFmpegPath overrides auto-detection of the ffmpeg binary.
	FFmpegPath string
}

// SelectConfig holds best-frame selection configuration.
type SelectConfig struct {
	// WindowSeconds is the length of each selection time window.
	WindowSeconds float64
	// MinScore drops frames below this visual score before ranking.
	MinScore float64
	// CandidatesPerWindow is how many finalists per window go to OCR.
	CandidatesPerWindow int
	// UseOCR enables OCR-assisted ranking and page deduplication.
	UseOCR bool
}

// OCRConfig holds text recognition configuration.
type OCRConfig struct {
	// Language is the tesseract language hint (default: swe).
	Language string
	// Workers bounds concurrent OCR calls.
	Workers int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for journal and output storage")
	outputPath := flag.String("output-path", "", "Path for digitized book output")
	inboxPath := flag.String("inbox-path", "", "Directory watched for new captures")

	fps := flag.String("fps", "", "Frame sampling rate (default: 2)")
	frameFormat := flag.String("frame-format", "", "Extracted frame image format (default: jpg)")
	ffmpegPath := flag.String("ffmpeg-path", "", "Path to ffmpeg binary (default: auto-detect)")

	windowSeconds := flag.String("window-seconds", "", "Selection window length in seconds (default: 3)")
	minScore := flag.String("min-score", "", "Minimum visual score for finalists (default: 0.1)")
	candidates := flag.String("candidates-per-window", "", "Finalists per window (default: 3)")
	useOCR := flag.String("use-ocr", "", "Enable OCR-assisted selection (default: true)")

	ocrLanguage := flag.String("ocr-language", "", "OCR language hint (default: swe)")
	ocrWorkers := flag.String("ocr-workers", "", "Concurrent OCR calls (default: 2)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath:   getConfigValue(*dataPath, "DATA_PATH", ""),
			OutputPath: getConfigValue(*outputPath, "OUTPUT_PATH", ""),
		},
		Intake: IntakeConfig{
			InboxPath: getConfigValue(*inboxPath, "INBOX_PATH", ""),
		},
		Extract: ExtractConfig{
			FPS:        getIntConfigValue(*fps, "EXTRACT_FPS", 2),
			Format:     getConfigValue(*frameFormat, "FRAME_FORMAT", "jpg"),
			FFmpegPath: getConfigValue(*ffmpegPath, "FFMPEG_PATH", ""),
		},
		Select: SelectConfig{
			WindowSeconds:       getFloatConfigValue(*windowSeconds, "WINDOW_SECONDS", 3),
			MinScore:            getFloatConfigValue(*minScore, "MIN_SCORE", 0.1),
			CandidatesPerWindow: getIntConfigValue(*candidates, "CANDIDATES_PER_WINDOW", tuning.DefaultCandidatesPerWindow),
			UseOCR:              getBoolConfigValue(*useOCR, "USE_OCR", true),
		},
		OCR: OCRConfig{
			Language: getConfigValue(*ocrLanguage, "OCR_LANGUAGE", "swe"),
			Workers:  getIntConfigValue(*ocrWorkers, "OCR_WORKERS", tuning.DefaultOCRWorkers),
		},
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandOutputPath(); err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}
	if err := cfg.expandInboxPath(); err != nil {
		return nil, fmt.Errorf("invalid inbox path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}
	if c.Extract.FPS <= 0 {
		return fmt.Errorf("invalid sampling rate: %d (must be positive)", c.Extract.FPS)
	}
	if c.Select.WindowSeconds <= 0 {
		return fmt.Errorf("invalid window length: %v (must be positive)", c.Select.WindowSeconds)
	}
	if c.Select.CandidatesPerWindow <= 0 {
		return fmt.Errorf("invalid candidates per window: %d (must be positive)", c.Select.CandidatesPerWindow)
	}
	if c.OCR.Workers < 1 || c.OCR.Workers > tuning.MaxOCRWorkers {
		return fmt.Errorf("invalid OCR workers: %d (must be 1-%d)", c.OCR.Workers, tuning.MaxOCRWorkers)
	}

	// InboxPath can be empty - one-shot CLI runs don't watch an inbox.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to
// ~/ReadAlong/digitizer.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "ReadAlong", "digitizer")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandOutputPath defaults to {data}/books if not specified.
func (c *Config) expandOutputPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "books")

	expanded, err := expandPath(c.Data.OutputPath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.OutputPath = expanded
	return nil
}

// expandInboxPath expands ~ and makes the path absolute.
// If empty, leaves it empty to disable the intake watcher.
func (c *Config) expandInboxPath() error {
	if c.Intake.InboxPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Intake.InboxPath, "")
	if err != nil {
		return err
	}
	c.Intake.InboxPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
