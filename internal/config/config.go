package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Interview InterviewConfig `mapstructure:"interview"`
	Recording RecordingConfig `mapstructure:"recording"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	FallbackModels    []string      `mapstructure:"fallback_models"`
	QuestionTimeout   time.Duration `mapstructure:"question_timeout"`
	EvaluationTimeout time.Duration `mapstructure:"evaluation_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	BreakerThreshold  int           `mapstructure:"breaker_threshold"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"`
}

type SpeechConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Language   string `mapstructure:"language"`
	SampleRate int    `mapstructure:"sample_rate"`
}

type InterviewConfig struct {
	MaxQuestions int           `mapstructure:"max_questions"`
	MaxDuration  time.Duration `mapstructure:"max_duration"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

type RecordingConfig struct {
	Folder         string        `mapstructure:"folder"`
	FFmpegPath     string        `mapstructure:"ffmpeg_path"`
	FFmpegTimeout  time.Duration `mapstructure:"ffmpeg_timeout"`
	VideoFrameRate int           `mapstructure:"video_frame_rate"`
}

type CleanupConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Interval      time.Duration `mapstructure:"interval"`
	MaxStreamIdle time.Duration `mapstructure:"max_stream_idle"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "60s")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "jobportal")
	v.SetDefault("database.database", "jobportal")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", true)

	// AI
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.fallback_models", []string{
		"gemini-2.0-flash-lite",
		"gemini-2.0-flash",
		"gemini-2.5-flash-lite",
		"gemini-flash-latest",
		"gemini-pro-latest",
	})
	v.SetDefault("ai.question_timeout", "8s")
	v.SetDefault("ai.evaluation_timeout", "30s")
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.breaker_threshold", 5)
	v.SetDefault("ai.breaker_cooldown", "60s")

	// Speech
	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.language", "en-US")
	v.SetDefault("speech.sample_rate", 16000)

	// Interview
	v.SetDefault("interview.max_questions", 10)
	v.SetDefault("interview.max_duration", "30m")
	v.SetDefault("interview.session_ttl", "24h")

	// Recording
	v.SetDefault("recording.folder", "./recordings")
	v.SetDefault("recording.ffmpeg_path", "ffmpeg")
	v.SetDefault("recording.ffmpeg_timeout", "5m")
	v.SetDefault("recording.video_frame_rate", 30)

	// Cleanup
	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.interval", "5m")
	v.SetDefault("cleanup.max_stream_idle", "5m")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.enabled", "USE_REDIS")

	// AI
	v.BindEnv("ai.api_key", "GEMINI_API_KEY")
	v.BindEnv("ai.model", "GEMINI_MODEL")

	// Recording
	v.BindEnv("recording.folder", "RECORDINGS_FOLDER")
}
