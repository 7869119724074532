package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Fetch    FetchConfig
	LLM      LLMConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	Token      string
	APIBaseURL string
}

type FetchConfig struct {
	RepositoryURLs    []string
	IssueDetailLimit  int
	CommitDetailLimit int
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Workers int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./whodid.db"),
		},
		GitHub: GitHubConfig{
			Token:      getEnv("GITHUB_TOKEN", ""),
			APIBaseURL: getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),
		},
		Fetch: FetchConfig{
			RepositoryURLs:    getEnvAsList("REPOSITORY_URLS"),
			IssueDetailLimit:  getEnvAsInt("MAX_ISSUES_TO_DETAIL_PER_REPO", 500),
			CommitDetailLimit: getEnvAsInt("MAX_COMMITS_TO_DETAIL_PER_REPO", 500),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLAMA_API_KEY", ""),
			BaseURL: getEnv("LLAMA_BASE_URL", "https://api.llama.com/compat/v1"),
			Model:   getEnv("LLAMA_MODEL", "Llama-4-Maverick-17B-128E-Instruct-FP8"),
			Workers: getEnvAsInt("LLM_WORKERS", 8),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable into a slice
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
