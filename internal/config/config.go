package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

// EnvVarPrefix namespaces every setting in the environment, e.g. AI_SERVICE_PORT.
const EnvVarPrefix = "AI_SERVICE"

// OCR engines the Text Reader can run on.
const (
	EngineTesseract   = "tesseract"
	EngineRekognition = "rekognition"
	EngineOllama      = "ollama"
)

type Config struct {
	Host string
	Port int

	BackendURL     string
	BackendTimeout time.Duration
	BackendRetries int

	OCREngine            string
	OCRLanguage          string
	TessdataPrefix       string
	MinPlateLength       int
	DisableSubstitutions bool

	AWSRegion        string
	SQSEventQueueURL string

	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration

	GinMode string
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads .env (if present) into the environment, then parses args with
// AI_SERVICE_* environment variables as fallbacks. Flags win over env.
func Load(args []string) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	fs := ff.NewFlagSet("ai-service")
	var (
		host           = fs.StringLong("host", "0.0.0.0", "HTTP listen host")
		port           = fs.IntLong("port", 5000, "HTTP listen port")
		backendURL     = fs.StringLong("backend-url", "http://localhost:3000", "base URL of the parking recording service")
		backendTimeout = fs.DurationLong("backend-timeout", 10*time.Second, "timeout for a call to the recording service")
		backendRetries = fs.IntLong("backend-retries", 1, "retries after a transport failure toward the recording service")
		ocrEngine      = fs.StringLong("ocr-engine", EngineTesseract, "OCR engine: tesseract, rekognition or ollama")
		ocrLanguage    = fs.StringLong("ocr-language", "eng", "tesseract language")
		tessdataPrefix = fs.StringLong("tessdata-prefix", "", "directory holding tesseract trained data (default: platform install path)")
		minPlateLength = fs.IntLong("min-plate-length", 4, "shortest normalized text accepted as a plate")
		disableSubs    = fs.BoolLong("disable-substitutions", "keep O, I, Z and S instead of mapping them to 0, 1, 2 and 5")
		awsRegion      = fs.StringLong("aws-region", "ap-southeast-1", "AWS region for rekognition and SQS")
		sqsQueueURL    = fs.StringLong("sqs-event-queue-url", "", "SQS queue of gate camera frames (empty disables the consumer)")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model")
		ollamaTimeout  = fs.DurationLong("ollama-timeout", 60*time.Second, "timeout for one Ollama transcription")
		ginMode        = fs.StringLong("gin-mode", "release", "gin mode: debug, release or test")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvVarPrefix)); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		}
		return nil, err
	}

	cfg := &Config{
		Host:                 *host,
		Port:                 *port,
		BackendURL:           *backendURL,
		BackendTimeout:       *backendTimeout,
		BackendRetries:       *backendRetries,
		OCREngine:            *ocrEngine,
		OCRLanguage:          *ocrLanguage,
		TessdataPrefix:       *tessdataPrefix,
		MinPlateLength:       *minPlateLength,
		DisableSubstitutions: *disableSubs,
		AWSRegion:            *awsRegion,
		SQSEventQueueURL:     *sqsQueueURL,
		OllamaURL:            *ollamaURL,
		OllamaModel:          *ollamaModel,
		OllamaTimeout:        *ollamaTimeout,
		GinMode:              *ginMode,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NeedsAWS reports whether any enabled component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.OCREngine == EngineRekognition || c.SQSEventQueueURL != ""
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url %q", c.BackendURL)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.BackendTimeout)
	}
	if c.BackendRetries < 0 {
		return fmt.Errorf("backend retries must not be negative, got %d", c.BackendRetries)
	}
	if c.MinPlateLength < 1 {
		return fmt.Errorf("min plate length must be at least 1, got %d", c.MinPlateLength)
	}
	switch c.OCREngine {
	case EngineTesseract, EngineRekognition, EngineOllama:
	default:
		return fmt.Errorf("unknown OCR engine %q (valid: %s, %s, %s)", c.OCREngine, EngineTesseract, EngineRekognition, EngineOllama)
	}
	// gin.SetMode panics on anything else
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown gin mode %q (valid: %s, %s, %s)", c.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
	return nil
}
