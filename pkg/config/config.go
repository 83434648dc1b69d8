package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// AI provider settings
	AIProvider    string
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string
	EnrichWorkers int

	// Ingest settings
	CSVPath          string
	MaxSubjectLen    int
	MaxBodyLen       int
	TimestampDefault string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inbox_organizer port=5432 sslmode=disable"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		EnrichWorkers: getEnvInt("ENRICH_WORKERS", 3),

		CSVPath:          getEnv("CSV_PATH", "data/dataset_emails.csv"),
		MaxSubjectLen:    getEnvInt("MAX_SUBJECT_LEN", 200),
		MaxBodyLen:       getEnvInt("MAX_BODY_LEN", 5000),
		TimestampDefault: getEnv("TIMESTAMP_DEFAULT", "1970-01-01T00:00:00Z"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
