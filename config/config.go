package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	RecognizerTesseract = "tesseract"
	RecognizerPaddle    = "paddle"

	DefaultPort           = "8080"
	DefaultTessdata       = "/usr/share/tesseract-ocr/5/tessdata"
	DefaultLanguage       = "eng"
	DefaultPaddleURL      = "http://paddleocr:8866/predict/ocr_system"
	DefaultMaxFileSize    = 10 * 1024 * 1024 // 10 MB
	DefaultDBPath         = "workpass.db"
	DefaultStorageDir     = "uploads"
	DefaultLogLevel       = "info"
	DefaultExtractTimeout = 90 * time.Second
	DefaultMaxParallel    = 4
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguage       string
	Recognizer        string
	PaddleURL         string
	MaxFileSize       int64
	DBPath            string
	StorageDir        string
	LogLevel          string
	ExtractTimeout    time.Duration
	MaxParallel       int
}

// LoadConfig layers defaults, environment and command line flags.
// SERVER_PORT and TESSDATA_PREFIX keep their plain names; every other key
// reads WORKPASS_<KEY>.
func LoadConfig(args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORKPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("tessdata", DefaultTessdata)
	v.SetDefault("ocr_language", DefaultLanguage)
	v.SetDefault("recognizer", RecognizerTesseract)
	v.SetDefault("paddle_url", DefaultPaddleURL)
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("extract_timeout", DefaultExtractTimeout)
	v.SetDefault("max_parallel", DefaultMaxParallel)

	_ = v.BindEnv("port", "SERVER_PORT")
	_ = v.BindEnv("tessdata", "TESSDATA_PREFIX")

	flags := pflag.NewFlagSet("workpass-ocr", pflag.ContinueOnError)
	flags.String("port", DefaultPort, "HTTP listen port")
	flags.String("tessdata", DefaultTessdata, "Tesseract tessdata directory")
	flags.String("ocr_language", DefaultLanguage, "Tesseract languages, '+' separated")
	flags.String("recognizer", RecognizerTesseract, "OCR engine: tesseract or paddle")
	flags.String("paddle_url", DefaultPaddleURL, "PaddleOCR prediction endpoint")
	flags.Int64("max_file_size", DefaultMaxFileSize, "Maximum upload size in bytes")
	flags.String("db_path", DefaultDBPath, "bbolt database file; empty disables persistence")
	flags.String("storage_dir", DefaultStorageDir, "Directory for uploaded images; empty disables storage")
	flags.String("log_level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.Duration("extract_timeout", DefaultExtractTimeout, "Time limit for one submission")
	flags.Int("max_parallel", DefaultMaxParallel, "Files extracted concurrently per submission")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		ServerPort:        v.GetString("port"),
		TesseractDataPath: v.GetString("tessdata"),
		OCRLanguage:       v.GetString("ocr_language"),
		Recognizer:        strings.ToLower(v.GetString("recognizer")),
		PaddleURL:         v.GetString("paddle_url"),
		MaxFileSize:       v.GetInt64("max_file_size"),
		DBPath:            v.GetString("db_path"),
		StorageDir:        v.GetString("storage_dir"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		ExtractTimeout:    v.GetDuration("extract_timeout"),
		MaxParallel:       v.GetInt("max_parallel"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("port cannot be empty")
	}
	if c.Recognizer != RecognizerTesseract && c.Recognizer != RecognizerPaddle {
		return fmt.Errorf("recognizer must be %q or %q", RecognizerTesseract, RecognizerPaddle)
	}
	if c.Recognizer == RecognizerPaddle && c.PaddleURL == "" {
		return errors.New("paddle_url is required for the paddle recognizer")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.ExtractTimeout <= 0 {
		return errors.New("extract timeout must be positive")
	}
	if c.MaxParallel < 1 {
		return errors.New("max_parallel must be at least 1")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// Languages returns the Tesseract language list
func (c *Config) Languages() []string {
	return strings.Split(c.OCRLanguage, "+")
}
