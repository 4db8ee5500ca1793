// internal/config/config.go
//
// Process configuration from the environment.
// A .env file in the working directory is loaded first when present; real
// environment variables win over .env entries.
//
// Variables (defaults in parentheses):
//   LOG_LEVEL (info), LOG_FORMAT (json | console)
//   MODEL_BACKEND (ollama | anthropic | file), MODEL_NAME (backend default), OLLAMA_HOST,
//   ANTHROPIC_API_KEY, MODEL_FILE, MODEL_MAX_TOKENS (1024), MODEL_TEMPERATURE (0.7)
//   ENV_URL (empty = in-process), ENV_SECRET, ENV_MODE (random | daily | fixed),
//   ENV_ANSWER, ENV_STRICT (false), ENV_SEED (0 = random), ENV_SESSION_TTL (30m)
//   WORDS_ANSWERS_FILE, WORDS_ALLOWED_FILE, DAILY_SALT (local_dev_salt)
//   MAX_ATTEMPTS (6), SANDBOX_MAX_STEPS (5000000), SANDBOX_SEED
//   HISTORY_DB (./data/history.db), PORT (5175)

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	ModelBackend     string
	ModelName        string
	OllamaHost       string
	AnthropicAPIKey  string
	ModelFile        string
	ModelMaxTokens   int
	ModelTemperature float64

	EnvURL    string
	EnvSecret string
	EnvMode   string
	EnvAnswer string
	EnvStrict bool
	EnvSeed   uint64
	// SessionTTL is how long serve-env keeps an unused session.
	SessionTTL time.Duration

	AnswersFile string
	AllowedFile string
	DailySalt   string

	MaxAttempts     int
	SandboxMaxSteps uint64
	SandboxSeed     uint64

	HistoryDB string
	Port      string
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (Config, error) {
	p := &parser{}
	c := Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ModelBackend:     getEnv("MODEL_BACKEND", "ollama"),
		ModelName:        os.Getenv("MODEL_NAME"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		ModelFile:        os.Getenv("MODEL_FILE"),
		ModelMaxTokens:   p.int("MODEL_MAX_TOKENS", 1024),
		ModelTemperature: p.float("MODEL_TEMPERATURE", 0.7),

		EnvURL:    os.Getenv("ENV_URL"),
		EnvSecret: os.Getenv("ENV_SECRET"),
		EnvMode:   getEnv("ENV_MODE", "random"),
		EnvAnswer: os.Getenv("ENV_ANSWER"),
		EnvStrict: p.bool("ENV_STRICT", false),
		EnvSeed:   p.uint("ENV_SEED", 0),

		SessionTTL: p.duration("ENV_SESSION_TTL", 30*time.Minute),

		AnswersFile: os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile: os.Getenv("WORDS_ALLOWED_FILE"),
		DailySalt:   getEnv("DAILY_SALT", "local_dev_salt"),

		MaxAttempts:     p.int("MAX_ATTEMPTS", 6),
		SandboxMaxSteps: p.uint("SANDBOX_MAX_STEPS", 5_000_000),
		SandboxSeed:     p.uint("SANDBOX_SEED", 0),

		HistoryDB: getEnv("HISTORY_DB", "./data/history.db"),
		Port:      getEnv("PORT", "5175"),
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if c.MaxAttempts <= 0 {
		return Config{}, fmt.Errorf("config: MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parser keeps the first parse error so FromEnv can report it once.
type parser struct{ err error }

func (p *parser) fail(k, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: %s=%q: %w", k, v, err)
	}
}

func (p *parser) int(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(k, v, err)
		return def
	}
	return n
}

func (p *parser) uint(k string, def uint64) uint64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(k, v, err)
		return def
	}
	return n
}

func (p *parser) float(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(k, v, err)
		return def
	}
	return f
}

func (p *parser) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(k, v, err)
		return def
	}
	return d
}

func (p *parser) bool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(k, v, err)
		return def
	}
	return b
}
