package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Store      StoreConfig      `mapstructure:"store"`
	Lock       LockConfig       `mapstructure:"lock"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// FeedConfig holds the social feed client configuration
type FeedConfig struct {
	Sources           []string `mapstructure:"sources"`
	PostLimit         int      `mapstructure:"post_limit"`
	ClientID          string   `mapstructure:"client_id"`
	ClientSecret      string   `mapstructure:"client_secret"`
	UserAgent         string   `mapstructure:"user_agent"`
	BaseURL           string   `mapstructure:"base_url"`
	AuthURL           string   `mapstructure:"auth_url"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute"`
}

// ExtractorConfig holds the reference vocabulary configuration
type ExtractorConfig struct {
	VocabularyPath string `mapstructure:"vocabulary_path"`
	StopwordsPath  string `mapstructure:"stopwords_path"` // empty uses the bundled English list
	Limit          int    `mapstructure:"limit"`
}

// ClassifierConfig holds the Azure OpenAI completion configuration
type ClassifierConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Deployment  string        `mapstructure:"deployment"`
	Model       string        `mapstructure:"model"`
	APIVersion  string        `mapstructure:"api_version"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top_p"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StoreConfig holds product store configuration
type StoreConfig struct {
	Driver          string        `mapstructure:"driver"` // "postgres", "sqlite" or "memory"
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LockConfig holds the run lock configuration. An empty RedisAddr disables locking.
type LockConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	Key           string        `mapstructure:"key"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// ScheduleConfig holds the in-process daily trigger configuration
type ScheduleConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Hour          int           `mapstructure:"hour"`
	Minute        int           `mapstructure:"minute"`
	RunOnStartup  bool          `mapstructure:"run_on_startup"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Mode  string `mapstructure:"mode"` // "development" or "production"
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/trendlens/")

	// Environment variable settings
	v.SetEnvPrefix("TRENDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Functions host tells a custom handler which port to listen on
	if err := v.BindEnv("server.port", "TRENDLENS_SERVER_PORT", "FUNCTIONS_CUSTOMHANDLER_PORT"); err != nil {
		return nil, fmt.Errorf("error binding server port: %w", err)
	}

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.Feed.Sources = cleanSources(config.Feed.Sources)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key gets a default,
// even an empty one, so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")

	// Feed defaults
	v.SetDefault("feed.sources", []string{"buyitforlife", "Frugal", "findareddit", "ifyoulikeblank"})
	v.SetDefault("feed.post_limit", 250)
	v.SetDefault("feed.client_id", "")
	v.SetDefault("feed.client_secret", "")
	v.SetDefault("feed.user_agent", "trendlens/1.0")
	v.SetDefault("feed.base_url", "https://oauth.reddit.com")
	v.SetDefault("feed.auth_url", "https://www.reddit.com/api/v1/access_token")
	v.SetDefault("feed.requests_per_minute", 60)

	// Extractor defaults
	v.SetDefault("extractor.vocabulary_path", "data/food_products_list.csv")
	v.SetDefault("extractor.stopwords_path", "")
	v.SetDefault("extractor.limit", 50)

	// Classifier defaults
	v.SetDefault("classifier.endpoint", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.deployment", "")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.api_version", "2024-06-01")
	v.SetDefault("classifier.max_tokens", 2048)
	v.SetDefault("classifier.temperature", 1.0)
	v.SetDefault("classifier.top_p", 1.0)
	v.SetDefault("classifier.timeout", "60s")

	// Store defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", "products")
	v.SetDefault("store.max_open_conns", 10)
	v.SetDefault("store.max_idle_conns", 2)
	v.SetDefault("store.conn_max_lifetime", "30m")

	// Lock defaults
	v.SetDefault("lock.redis_addr", "")
	v.SetDefault("lock.redis_password", "")
	v.SetDefault("lock.key", "trendlens:run-lock")
	v.SetDefault("lock.ttl", "30m")

	// Schedule defaults (06:00 UTC daily)
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.hour", 6)
	v.SetDefault("schedule.minute", 0)
	v.SetDefault("schedule.run_on_startup", true)
	v.SetDefault("schedule.check_interval", "1m")

	// Log defaults
	v.SetDefault("log.mode", "development")
	v.SetDefault("log.level", "info")
}

// cleanSources trims source names and drops empties
func cleanSources(sources []string) []string {
	cleaned := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Feed.Sources) == 0 {
		return fmt.Errorf("at least one feed source is required (set TRENDLENS_FEED_SOURCES)")
	}
	if config.Feed.PostLimit <= 0 {
		return fmt.Errorf("feed post limit must be positive, got: %d", config.Feed.PostLimit)
	}
	if config.Feed.ClientID == "" || config.Feed.ClientSecret == "" {
		return fmt.Errorf("feed credentials are required (set TRENDLENS_FEED_CLIENT_ID and TRENDLENS_FEED_CLIENT_SECRET)")
	}

	if config.Extractor.Limit <= 0 {
		return fmt.Errorf("extractor limit must be positive, got: %d", config.Extractor.Limit)
	}

	if config.Classifier.Endpoint == "" {
		return fmt.Errorf("classifier endpoint is required (set TRENDLENS_CLASSIFIER_ENDPOINT)")
	}
	if config.Classifier.APIKey == "" {
		return fmt.Errorf("classifier API key is required (set TRENDLENS_CLASSIFIER_API_KEY)")
	}
	if config.Classifier.Deployment == "" {
		return fmt.Errorf("classifier deployment is required (set TRENDLENS_CLASSIFIER_DEPLOYMENT)")
	}
	if config.Classifier.Temperature < 0 || config.Classifier.Temperature > 2 {
		return fmt.Errorf("classifier temperature must be between 0 and 2, got: %v", config.Classifier.Temperature)
	}
	if config.Classifier.TopP < 0 || config.Classifier.TopP > 1 {
		return fmt.Errorf("classifier top_p must be between 0 and 1, got: %v", config.Classifier.TopP)
	}

	switch config.Store.Driver {
	case "postgres", "sqlite":
		if config.Store.DSN == "" {
			return fmt.Errorf("store DSN is required when store driver is '%s'", config.Store.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("store driver must be 'postgres', 'sqlite' or 'memory', got: %s", config.Store.Driver)
	}
	if config.Store.Table == "" {
		return fmt.Errorf("store table name is required (set TRENDLENS_STORE_TABLE)")
	}

	if config.Schedule.Hour < 0 || config.Schedule.Hour > 23 {
		return fmt.Errorf("schedule hour must be 0-23, got: %d", config.Schedule.Hour)
	}
	if config.Schedule.Minute < 0 || config.Schedule.Minute > 59 {
		return fmt.Errorf("schedule minute must be 0-59, got: %d", config.Schedule.Minute)
	}

	return nil
}
