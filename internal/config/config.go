package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ticketsim/internal/simulation"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App        App        `yaml:"app"`
	HTTP       HTTP       `yaml:"http"`
	Log        Log        `yaml:"log"`
	Postgres   Postgres   `yaml:"postgres"`
	Redis      Redis      `yaml:"redis"`
	Kafka      Kafka      `yaml:"kafka"`
	Worker     Worker     `yaml:"worker"`
	Simulation Simulation `yaml:"simulation"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"ticketsim"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port        string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	MetricsPort string `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9093"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"cph_airport"`
	Schema   string `yaml:"schema" env:"POSTGRES_SCHEMA" env-default:"cph_airport"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Kafka struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic       string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"airport-events"`
	GroupID     string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"ticket-simulator"`
	StartOffset string   `yaml:"start_offset" env:"KAFKA_START_OFFSET" env-default:"earliest"`
}

type Worker struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"WORKER_POLL_INTERVAL" env-default:"2s"`
	BatchSize    int           `yaml:"batch_size" env:"WORKER_BATCH_SIZE" env-default:"10"`
}

type Simulation struct {
	CooldownDays int           `yaml:"cooldown_days" env:"SIM_COOLDOWN_DAYS" env-default:"2"`
	ForceFill    bool          `yaml:"force_fill" env:"SIM_FORCE_FILL" env-default:"false"`
	Seed         uint64        `yaml:"seed" env:"SIM_SEED" env-default:"0"`
	ChunkSize    int           `yaml:"chunk_size" env:"SIM_CHUNK_SIZE" env-default:"5000"`
	CreateTables bool          `yaml:"create_tables" env:"SIM_CREATE_TABLES" env-default:"false"`
	LockTTL      time.Duration `yaml:"lock_ttl" env:"SIM_LOCK_TTL" env-default:"30m"`
	Schedule     string        `yaml:"schedule" env:"SIM_SCHEDULE"`
}

// New loads CONFIG_PATH, or config.yaml when unset.
func New() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

// Load reads path when present and lets environment variables override it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Simulation.CooldownDays < 0 || c.Simulation.CooldownDays > simulation.MaxCooldownDays {
		return fmt.Errorf("config error: simulation.cooldown_days must be within [0, %d], got %d",
			simulation.MaxCooldownDays, c.Simulation.CooldownDays)
	}
	if c.Simulation.ChunkSize <= 0 {
		return fmt.Errorf("config error: simulation.chunk_size must be positive, got %d", c.Simulation.ChunkSize)
	}
	return nil
}

// SlogLevel maps log.level onto slog levels, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds the JSON stdout logger every command installs as default.
func (l Log) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l.SlogLevel()}))
}
