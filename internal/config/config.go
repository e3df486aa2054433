package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Game     GameConfig     `yaml:"game"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// KafkaConfig holds Kafka connection configuration for the activity
// consumer and the chat relay producer.
type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	ActivityTopic string        `yaml:"activity_topic"`
	ChatTopic     string        `yaml:"chat_topic"`
	GroupID       string        `yaml:"group_id"`
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	BatchTimeout  time.Duration `yaml:"batch_timeout"`
}

// RedisConfig holds the leaderboard mirror connection configuration
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MirrorKey    string        `yaml:"mirror_key"`
}

// PostgresConfig holds the event archive connection configuration
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// ConnectionString returns the PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// ArchiveConfig holds event archive worker configuration
type ArchiveConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

// ActivityRule configures how one DeFi action converts into progression
type ActivityRule struct {
	MinXP         int     `yaml:"min_xp"`
	MaxXP         int     `yaml:"max_xp"`
	QuestProgress float64 `yaml:"quest_progress"`
}

// GameConfig holds progression tuning
type GameConfig struct {
	SeedPlayers    bool                    `yaml:"seed_players"`
	QuestJoinDelay time.Duration           `yaml:"quest_join_delay"`
	Activities     map[string]ActivityRule `yaml:"activities"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.ActivityTopic == "" {
		c.Kafka.ActivityTopic = "defi-activity"
	}
	if c.Kafka.ChatTopic == "" {
		c.Kafka.ChatTopic = "group-conversation-topic"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "progression-consumer"
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = 1 * time.Second
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 50
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}
	if c.Redis.MirrorKey == "" {
		c.Redis.MirrorKey = "leaderboard:xp"
	}

	// PostgreSQL defaults
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.MaxConnections == 0 {
		c.Postgres.MaxConnections = 20
	}
	if c.Postgres.MinConnections == 0 {
		c.Postgres.MinConnections = 2
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 1 * time.Hour
	}
	if c.Postgres.MaxConnIdleTime == 0 {
		c.Postgres.MaxConnIdleTime = 30 * time.Minute
	}

	// Archive defaults
	if c.Archive.Interval == 0 {
		c.Archive.Interval = 30 * time.Second
	}
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = 500
	}

	// Game defaults: XP ranges and quest progress deltas per action
	if c.Game.QuestJoinDelay == 0 {
		c.Game.QuestJoinDelay = 1 * time.Second
	}
	if c.Game.Activities == nil {
		c.Game.Activities = map[string]ActivityRule{}
	}
	defaultRules := map[string]ActivityRule{
		"swap":      {MinXP: 50, MaxXP: 149, QuestProgress: 0.2},
		"liquidity": {MinXP: 100, MaxXP: 249, QuestProgress: 0.3},
		"stake":     {MinXP: 80, MaxXP: 199, QuestProgress: 0.2},
		"bridge":    {MinXP: 60, MaxXP: 149, QuestProgress: 0.2},
	}
	for action, rule := range defaultRules {
		if _, ok := c.Game.Activities[action]; !ok {
			c.Game.Activities[action] = rule
		}
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Game.SeedPlayers = true
	return cfg
}
