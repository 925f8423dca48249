package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Scribe   ScribeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "openai"
	LLMModel      string // e.g. "llama3", "gpt-4o-mini"
	OllamaBaseURL string
	OpenAIKey     string
}

// ScribeConfig carries the scribe pipeline tunables. Debounce and minimum
// transcript length are latency heuristics, not correctness boundaries, so
// they live here rather than as literals.
type ScribeConfig struct {
	Locale                     string
	SuggestionDebounceMs       int
	SuggestionMinTranscript    int // characters before the first suggestion call
	SuggestionMaxVisible       int // cap per render, across categories
	StreamTimeoutSeconds       int // 0 disables the upstream stream timeout
	TranscriptChangedTopicName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		},
		Scribe: ScribeConfig{
			Locale:                     getEnv("SCRIBE_LOCALE", "es"),
			SuggestionDebounceMs:       getEnvAsInt("SUGGESTION_DEBOUNCE_MS", 2000),
			SuggestionMinTranscript:    getEnvAsInt("SUGGESTION_MIN_TRANSCRIPT_CHARS", 120),
			SuggestionMaxVisible:       getEnvAsInt("SUGGESTION_MAX_VISIBLE", 6),
			StreamTimeoutSeconds:       getEnvAsInt("STREAM_TIMEOUT_SECONDS", 300),
			TranscriptChangedTopicName: getEnv("TRANSCRIPT_CHANGED_TOPIC_NAME", "TRANSCRIPT_CHANGED"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
