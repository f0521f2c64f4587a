package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	UsersEnv   = "env"
	UsersFile  = "file"
	UsersRedis = "redis"
)

const defaultPrompt = `Ratatoskr is an EI (Extended Intelligence) written in Go.
An extended intelligence is a software system that utilises multiple language models,
AI models, NLP functions and other capabilities to best serve the user.
As the response model for Ratatoskr, you answer user questions as if you are the main brain of the system.`

type Config struct {
	OpenAIKey           string
	OpenAIBaseURL       string
	TelegramToken       string
	Model               string
	EmbeddingModel      string
	AssistantPrompt     string
	MaxCompletionTokens int

	AdminUsername    string
	AllowedUsernames []string
	UsersSource      string
	AllowedUsersFile string

	StoreBackend string
	RedisURL     string
	SQLitePath   string
	HistoryLimit int

	ScoringConcurrency int
	HealthAddr         string
	LogLevel           string

	// Warnings holds non-fatal problems found while loading; they are
	// logged once a logger exists.
	Warnings []string
}

func Load(path string) (Config, error) {
	var warnings []string
	if err := loadDotEnv(path); err != nil {
		warnings = append(warnings, fmt.Sprintf("could not read %s: %v", path, err))
	}

	cfg := Config{
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		Model:               getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getenvDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		AssistantPrompt:     getenvDefault("ASSISTANT_PROMPT", defaultPrompt),
		UsersSource:         strings.ToLower(getenvDefault("USERS_SOURCE", UsersEnv)),
		AllowedUsersFile:    getenvDefault("ALLOWED_USERS_FILE", "allowed_users.yaml"),
		StoreBackend:        strings.ToLower(getenvDefault("STORE_BACKEND", StoreRedis)),
		RedisURL:            getenvDefault("REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:          getenvDefault("SQLITE_PATH", "ratatoskr.db"),
		HealthAddr:          getenvDefault("HEALTH_ADDR", ":8080"),
		LogLevel:            getenvDefault("LOG_LEVEL", "info"),
		MaxCompletionTokens: getenvIntDefault("MAX_TOKENS", 4096, &warnings),
		HistoryLimit:        getenvIntDefault("HISTORY_LIMIT", 15, &warnings),
		ScoringConcurrency:  getenvIntDefault("SCORING_CONCURRENCY", 0, &warnings),
	}
	cfg.Warnings = warnings

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.OpenAIKey == "" || cfg.TelegramToken == "" {
		return cfg, errors.New("openai api key and telegram token are required")
	}

	cfg.AdminUsername = normalizeUsername(os.Getenv("TELEGRAM_ADMIN"))
	if cfg.AdminUsername == "" {
		return cfg, errors.New("TELEGRAM_ADMIN is required")
	}
	cfg.AllowedUsernames = parseUsernames(os.Getenv("ALLOWED_USERNAMES"))

	switch cfg.StoreBackend {
	case StoreRedis, StoreSQLite, StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	switch cfg.UsersSource {
	case UsersEnv, UsersFile:
	case UsersRedis:
		if cfg.StoreBackend != StoreRedis {
			return cfg, errors.New("USERS_SOURCE=redis requires STORE_BACKEND=redis")
		}
	default:
		return cfg, fmt.Errorf("unknown USERS_SOURCE %q", cfg.UsersSource)
	}
	if cfg.HistoryLimit <= 0 {
		return cfg, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.HistoryLimit)
	}

	return cfg, nil
}

func normalizeUsername(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "@")
}

func parseUsernames(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = normalizeUsername(p)
		if p == "" {
			continue
		}
		names = append(names, p)
	}
	return names
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int, warnings *[]string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("invalid int for %s=%q, using default %d", key, v, def))
		return def
	}
	return n
}

func loadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, val)
		}
	}
	return scanner.Err()
}

func parseEnvLine(line string) (string, string, bool) {
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	key, val, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	val = strings.Trim(strings.TrimSpace(val), `"'`)
	if key == "" {
		return "", "", false
	}
	return key, val, true
}
