package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	StoragePath string
	CatalogPath string

	SynthBaseURL   string
	SynthAPIKey    string
	SynthModel     string
	SynthTimeout   time.Duration
	SynthRateEvery time.Duration

	VisionBaseURL string
	VisionAPIKey  string
	VisionModel   string
	VisionTimeout time.Duration

	MaxConcurrentJobs int
	SubjectCacheTTL   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the service
// runs on in-memory repositories, which is the intended mode for local
// development and CI.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StoragePath: getEnv("STORAGE_PATH", "./storage"),
		CatalogPath: os.Getenv("CATALOG_PATH"),

		SynthBaseURL:   getEnv("SYNTH_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		SynthAPIKey:    os.Getenv("SYNTH_API_KEY"),
		SynthModel:     getEnv("SYNTH_MODEL", "gemini-2.5-flash-image"),
		SynthTimeout:   time.Second * time.Duration(getEnvInt("SYNTH_TIMEOUT_SECONDS", 60)),
		SynthRateEvery: time.Millisecond * time.Duration(getEnvInt("SYNTH_RATE_INTERVAL_MS", 2000)),

		VisionBaseURL: getEnv("VISION_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VisionAPIKey:  os.Getenv("VISION_API_KEY"),
		VisionModel:   getEnv("VISION_MODEL", "gemini-2.5-flash"),
		VisionTimeout: time.Second * time.Duration(getEnvInt("VISION_TIMEOUT_SECONDS", 30)),

		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 4),
		SubjectCacheTTL:   time.Second * time.Duration(getEnvInt("SUBJECT_CACHE_TTL_SECONDS", 300)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:   splitEnv("ALLOWED_ORIGINS"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
