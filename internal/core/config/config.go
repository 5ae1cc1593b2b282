package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type UsageEventsCfg struct {
	Enabled bool
	Brokers string
	Topic   string
}

type Config struct {
	Addr           string
	LogLevel       string
	RedisAddr      string
	CacheTTL       time.Duration
	CacheOpTimeout time.Duration
	HandlerTimeout time.Duration

	GenAIBaseURL string
	GenAIModel   string
	GenAIAPIKey  string
	GenAITimeout time.Duration

	AssetDir        string
	BackgroundFile  string
	FontFile        string
	PlaceholderFile string
	RenderCacheSize int

	UsageQueueSize int
	UsageEvents    UsageEventsCfg
}

func FromEnv() Config {
	assetDir := getenv("ASSET_DIR", "assets")

	return Config{
		Addr:           getenv("ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:       getduration("CACHE_TTL", 3*time.Hour),
		CacheOpTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		HandlerTimeout: getduration("HANDLER_TIMEOUT", 60*time.Second),

		GenAIBaseURL: getenv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		GenAIModel:   getenv("GENAI_MODEL", "gemini-2.0-flash"),
		GenAIAPIKey:  getenv("GENAI_API_KEY", ""),
		GenAITimeout: getduration("GENAI_TIMEOUT", 30*time.Second),

		AssetDir:        assetDir,
		BackgroundFile:  getasset(assetDir, "BACKGROUND_FILE", "background.png"),
		FontFile:        getasset(assetDir, "FONT_FILE", "emoji.ttf"),
		PlaceholderFile: getasset(assetDir, "PLACEHOLDER_FILE", "placeholder.png"),
		RenderCacheSize: getint("RENDER_CACHE_SIZE", 256),

		UsageQueueSize: getint("USAGE_QUEUE_SIZE", 1024),
		UsageEvents: UsageEventsCfg{
			Enabled: getbool("USAGE_EVENTS_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "meme-usage"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// resolves an asset env var against the asset dir unless already absolute
func getasset(dir, k, def string) string {
	v := getenv(k, def)
	if v == "" {
		return ""
	}
	if filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(dir, v)
}
