package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	AppEnv  string `env:"APP_ENV" default:"development"`
	AppPort string `env:"APP_PORT" default:"3000"`

	Store struct {
		Driver string `env:"STORE_DRIVER" default:"mongo"`
	}

	Mongo struct {
		URI      string `env:"MONGODB_URI" default:"mongodb://localhost:27017"`
		Database string `env:"MONGODB_DATABASE" default:"face_attendance"`
	}

	Postgres struct {
		Host     string `env:"DB_HOST" default:"localhost"`
		Port     string `env:"DB_PORT" default:"5432"`
		User     string `env:"DB_USER" default:"postgres"`
		Password string `env:"DB_PASSWORD"`
		Name     string `env:"DB_NAME" default:"face_attendance"`
		SSLMode  string `env:"DB_SSLMODE" default:"disable"`
	}

	Luxand struct {
		APIURL         string `env:"LUXAND_API_URL" default:"https://api.luxand.cloud"`
		Token          string `env:"LUXAND_API_TOKEN"`
		TimeoutSeconds int    `env:"LUXAND_TIMEOUT_SECONDS" default:"30"`
		SearchVersion  string `env:"LUXAND_SEARCH_VERSION" default:"v2"`
	}

	Recognition struct {
		Threshold           float64 `env:"RECOGNITION_THRESHOLD" default:"0.95"`
		TrackedRoomID       string  `env:"TRACKED_ROOM_ID" default:"7e20a2de-3aa8-11f0-8493-0242ac160002"`
		AttendanceRoomID    string  `env:"ATTENDANCE_ROOM_ID" default:"7e20a2de-3aa8-11f0-8493-0242ac160002"`
		CheckoutRoomID      string  `env:"CHECKOUT_ROOM_ID" default:"237602cf-e844-11ee-8061-0242ac160003"`
		CheckoutHour        int     `env:"CHECKOUT_HOUR" default:"18"`
		Timezone            string  `env:"ATTENDANCE_TIMEZONE" default:"Local"`
		DisableProviderSync bool    `env:"DISABLE_PROVIDER_ATTENDANCE_SYNC"`
		DedupSeconds        int     `env:"ATTENDANCE_DEDUP_SECONDS"`
	}

	OpenAI struct {
		APIKey    string `env:"OPENAI_API_KEY"`
		ChatModel string `env:"OPENAI_CHAT_MODEL" default:"gpt-3.5-turbo"`
		MaxTokens int    `env:"GREETING_MAX_TOKENS" default:"100"`
	}

	Gemini struct {
		APIKey    string `env:"GEMINI_API_KEY"`
		ModelName string `env:"GEMINI_MODEL_NAME" default:"gemini-1.5-flash"`
	}

	ElevenLabs struct {
		APIKey  string `env:"ELEVENLABS_API_KEY"`
		VoiceID string `env:"ELEVENLABS_VOICE_ID" default:"21m00Tcm4TlvDq8ikWAM"`
		APIURL  string `env:"ELEVENLABS_API_URL" default:"https://api.elevenlabs.io"`
	}

	Redis struct {
		Address  string `env:"REDIS_ADDRESS"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	AWS struct {
		Region          string `env:"AWS_REGION"`
		AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
		BucketName      string `env:"AWS_BUCKET_NAME"`
	}

	RateLimit struct {
		RPS   int `env:"RATE_LIMIT_RPS" default:"20"`
		Burst int `env:"RATE_LIMIT_BURST" default:"40"`
	}
}

// LoadEnv reads .env when present and then resolves AppConfig from the
// environment and the optional CONFIG_FILE.
func LoadEnv(logger *logrus.Logger) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	cfg := &AppConfig{}
	files := []string{}
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		files = append(files, file)
	}

	if err := configor.New(&configor.Config{Silent: true}).Load(cfg, files...); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Recognition.Threshold <= 0 || cfg.Recognition.Threshold > 1 {
		return nil, fmt.Errorf("RECOGNITION_THRESHOLD must be in (0, 1], got %v", cfg.Recognition.Threshold)
	}
	if cfg.Recognition.CheckoutHour < 0 || cfg.Recognition.CheckoutHour > 24 {
		return nil, fmt.Errorf("CHECKOUT_HOUR must be between 0 and 24, got %d", cfg.Recognition.CheckoutHour)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) Location() (*time.Location, error) {
	if c.Recognition.Timezone == "" || c.Recognition.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Recognition.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE %q: %w", c.Recognition.Timezone, err)
	}
	return loc, nil
}

func (c *AppConfig) LuxandTimeout() time.Duration {
	return time.Duration(c.Luxand.TimeoutSeconds) * time.Second
}

func (c *AppConfig) DedupWindow() time.Duration {
	return time.Duration(c.Recognition.DedupSeconds) * time.Second
}
