package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
	Cold RedisInstanceConfig `mapstructure:"cold"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4jConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		UserInteractions string `mapstructure:"user_interactions"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Default int           `mapstructure:"default"`
	Premium int           `mapstructure:"premium"`
	Window  time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RankingConfig carries every tunable named in spec.md section 6, plus the
// gate/scorer/reranker knobs of section 4. Loaded once at startup;
// ValidateInvariants must pass before the core is allowed to serve (section
// 7, invariant_violation).
type RankingConfig struct {
	// User vector builder (C3)
	WBookmark  float64 `mapstructure:"w_bookmark"`
	LambdaUser float64 `mapstructure:"lambda_user"`
	NMax       int     `mapstructure:"n_max"`

	// Quality gate (C4)
	CIMin int `mapstructure:"ci_min"`

	// Scorer (C5)
	WInsight    float64 `mapstructure:"w_insight"`
	WCred       float64 `mapstructure:"w_cred"`
	LambdaFresh float64 `mapstructure:"lambda_fresh"`
	FloorFresh  float64 `mapstructure:"floor_fresh"`
	WSim        float64 `mapstructure:"w_sim"`
	WAlpha      float64 `mapstructure:"w_alpha"`
	WFresh      float64 `mapstructure:"w_fresh"`

	// Candidate selector (C6)
	NCandidates int `mapstructure:"n_candidates"`

	// Reranker (C7)
	SeriesCap        int     `mapstructure:"series_cap"`
	AdjacencyPenalty float64 `mapstructure:"adjacency_penalty"`
	TopicThreshold   int     `mapstructure:"topic_threshold"`
	TopicPenalty     float64 `mapstructure:"topic_penalty"`
	EntityThreshold  int     `mapstructure:"entity_threshold"`
	EntityPenalty    float64 `mapstructure:"entity_penalty"`
	ContrarianBoost  float64 `mapstructure:"contrarian_boost"`

	// Session pool (C8)
	K                     int           `mapstructure:"k"`
	Pages                 int           `mapstructure:"pages"`
	SessionTimeout        time.Duration `mapstructure:"session_timeout"`
	CreateSessionDeadline time.Duration `mapstructure:"create_session_deadline"`

	// Embedding provider (C2)
	EmbeddingDimensions int           `mapstructure:"embedding_dimensions"`
	EmbeddingCacheTTL   time.Duration `mapstructure:"embedding_cache_ttl"`

	Caching CachingConfig `mapstructure:"caching"`
}

type CachingConfig struct {
	SessionQueueTTL time.Duration `mapstructure:"session_queue_ttl"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Port        string `mapstructure:"port"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := ValidateRawAgainstSchema(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("config schema validation failed: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Ranking.ValidateInvariants(); err != nil {
		return nil, fmt.Errorf("config invariant violation: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")
	viper.SetDefault("redis.cold.max_retries", 3)
	viper.SetDefault("redis.cold.pool_size", 5)
	viper.SetDefault("redis.cold.timeout", "15s")

	viper.SetDefault("kafka.topics.user_interactions", "user-interactions")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.default", 1000)
	viper.SetDefault("auth.rate_limit.premium", 10000)
	viper.SetDefault("auth.rate_limit.window", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Ranking defaults (spec.md section 6)
	viper.SetDefault("ranking.w_bookmark", 2.0)
	viper.SetDefault("ranking.lambda_user", 0.05)
	viper.SetDefault("ranking.n_max", 10)

	viper.SetDefault("ranking.ci_min", 5)

	viper.SetDefault("ranking.w_insight", 0.5)
	viper.SetDefault("ranking.w_cred", 0.5)
	viper.SetDefault("ranking.lambda_fresh", 0.03)
	viper.SetDefault("ranking.floor_fresh", 0.10)
	viper.SetDefault("ranking.w_sim", 0.50)
	viper.SetDefault("ranking.w_alpha", 0.35)
	viper.SetDefault("ranking.w_fresh", 0.15)

	viper.SetDefault("ranking.n_candidates", 50)

	viper.SetDefault("ranking.series_cap", 2)
	viper.SetDefault("ranking.adjacency_penalty", 0.80)
	viper.SetDefault("ranking.topic_threshold", 2)
	viper.SetDefault("ranking.topic_penalty", 0.85)
	viper.SetDefault("ranking.entity_threshold", 3)
	viper.SetDefault("ranking.entity_penalty", 0.70)
	viper.SetDefault("ranking.contrarian_boost", 1.15)

	viper.SetDefault("ranking.k", 10)
	viper.SetDefault("ranking.pages", 5)
	viper.SetDefault("ranking.session_timeout", "30m")
	viper.SetDefault("ranking.create_session_deadline", "10s")

	viper.SetDefault("ranking.embedding_dimensions", 1536)
	viper.SetDefault("ranking.embedding_cache_ttl", "24h")

	viper.SetDefault("ranking.caching.session_queue_ttl", "30m")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.port", "9090")
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}

// ValidateInvariants enforces the fail-fast-at-startup policy of spec.md
// section 7: weight groups must sum to 1.0 and every tunable must sit
// within the range spec.md declares for it. These are the invariants the
// JSON-Schema pass in schema.go cannot express (cross-field sums).
func (r *RankingConfig) ValidateInvariants() error {
	const eps = 1e-9

	if d := r.WInsight + r.WCred - 1.0; d > eps || d < -eps {
		return fmt.Errorf("w_insight + w_cred must equal 1.0, got %f", r.WInsight+r.WCred)
	}
	if d := r.WSim + r.WAlpha + r.WFresh - 1.0; d > eps || d < -eps {
		return fmt.Errorf("w_sim + w_alpha + w_fresh must equal 1.0, got %f", r.WSim+r.WAlpha+r.WFresh)
	}

	checks := []struct {
		name   string
		val    float64
		lo, hi float64
	}{
		{"w_bookmark", r.WBookmark, 1.5, 3.0},
		{"lambda_user", r.LambdaUser, 0.03, 0.10},
		{"w_insight", r.WInsight, 0.4, 0.6},
		{"w_cred", r.WCred, 0.4, 0.6},
		{"adjacency_penalty", r.AdjacencyPenalty, 0.70, 0.90},
		{"topic_penalty", r.TopicPenalty, 0.75, 0.90},
		{"entity_penalty", r.EntityPenalty, 0.60, 0.80},
		{"contrarian_boost", r.ContrarianBoost, 1.10, 1.25},
	}
	for _, c := range checks {
		if c.val < c.lo || c.val > c.hi {
			return fmt.Errorf("%s = %f out of range [%f, %f]", c.name, c.val, c.lo, c.hi)
		}
	}

	if r.NMax < 5 || r.NMax > 20 {
		return fmt.Errorf("n_max = %d out of range [5, 20]", r.NMax)
	}
	if r.CIMin < 4 || r.CIMin > 6 {
		return fmt.Errorf("ci_min = %d out of range [4, 6]", r.CIMin)
	}
	if r.NCandidates < 30 || r.NCandidates > 100 {
		return fmt.Errorf("n_candidates = %d out of range [30, 100]", r.NCandidates)
	}
	if r.SeriesCap < 1 || r.SeriesCap > 3 {
		return fmt.Errorf("series_cap = %d out of range [1, 3]", r.SeriesCap)
	}
	if r.TopicThreshold < 2 || r.TopicThreshold > 3 {
		return fmt.Errorf("topic_threshold = %d out of range [2, 3]", r.TopicThreshold)
	}
	if r.EntityThreshold < 2 || r.EntityThreshold > 4 {
		return fmt.Errorf("entity_threshold = %d out of range [2, 4]", r.EntityThreshold)
	}
	if r.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", r.K)
	}

	return nil
}
