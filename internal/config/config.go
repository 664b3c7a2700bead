package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string // empty means in-memory snapshot provider
	}
	API struct {
		Port     string
		BasePath string
	}
	Engine struct {
		Interval    time.Duration
		PassTimeout time.Duration
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	Telegram struct {
		BotToken  string
		ChatID    int64
		RateLimit int
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	if m, err := strconv.Atoi(os.Getenv("EVAL_INTERVAL_MINUTES")); err == nil && m > 0 {
		cfg.Engine.Interval = time.Duration(m) * time.Minute
	}
	if s, err := strconv.Atoi(os.Getenv("PASS_TIMEOUT_SECONDS")); err == nil && s > 0 {
		cfg.Engine.PassTimeout = time.Duration(s) * time.Second
	}

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil && r > 0 {
		cfg.Telegram.RateLimit = r
	}

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate optional pairs
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		return Config{}, fmt.Errorf("KAFKA_TOPIC required when KAFKA_BROKER is set")
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == 0 {
		return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID required when TELEGRAM_BOT_TOKEN is set")
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Engine.Interval == 0 {
		cfg.Engine.Interval = 5 * time.Minute
	}
	if cfg.Engine.PassTimeout == 0 {
		cfg.Engine.PassTimeout = 30 * time.Second
	}
	if cfg.Telegram.RateLimit == 0 {
		cfg.Telegram.RateLimit = 1
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
