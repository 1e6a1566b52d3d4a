package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the credentials validate insists on
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TRENDLENS_FEED_CLIENT_ID", "client-id")
	t.Setenv("TRENDLENS_FEED_CLIENT_SECRET", "client-secret")
	t.Setenv("TRENDLENS_CLASSIFIER_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("TRENDLENS_CLASSIFIER_API_KEY", "test-key")
	t.Setenv("TRENDLENS_CLASSIFIER_DEPLOYMENT", "gpt-4o-mini")
	t.Setenv("TRENDLENS_STORE_DSN", "postgres://localhost:5432/trendlens")
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when only required env vars set", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		wantSources := []string{"buyitforlife", "Frugal", "findareddit", "ifyoulikeblank"}
		if strings.Join(cfg.Feed.Sources, ",") != strings.Join(wantSources, ",") {
			t.Errorf("Feed.Sources = %v, want %v", cfg.Feed.Sources, wantSources)
		}
		if cfg.Feed.PostLimit != 250 {
			t.Errorf("Feed.PostLimit = %d, want 250", cfg.Feed.PostLimit)
		}
		if cfg.Extractor.Limit != 50 {
			t.Errorf("Extractor.Limit = %d, want 50", cfg.Extractor.Limit)
		}
		if cfg.Extractor.VocabularyPath != "data/food_products_list.csv" {
			t.Errorf("Extractor.VocabularyPath = %s, want data/food_products_list.csv", cfg.Extractor.VocabularyPath)
		}
		if cfg.Classifier.MaxTokens != 2048 {
			t.Errorf("Classifier.MaxTokens = %d, want 2048", cfg.Classifier.MaxTokens)
		}
		if cfg.Classifier.Temperature != 1.0 || cfg.Classifier.TopP != 1.0 {
			t.Errorf("Classifier sampling = (%v, %v), want (1, 1)", cfg.Classifier.Temperature, cfg.Classifier.TopP)
		}
		if cfg.Classifier.Timeout != 60*time.Second {
			t.Errorf("Classifier.Timeout = %v, want 60s", cfg.Classifier.Timeout)
		}
		if cfg.Store.Driver != "postgres" {
			t.Errorf("Store.Driver = %s, want postgres", cfg.Store.Driver)
		}
		if cfg.Store.Table != "products" {
			t.Errorf("Store.Table = %s, want products", cfg.Store.Table)
		}
		if cfg.Lock.RedisAddr != "" {
			t.Errorf("Lock.RedisAddr = %s, want empty", cfg.Lock.RedisAddr)
		}
		if cfg.Schedule.Hour != 6 || cfg.Schedule.Minute != 0 {
			t.Errorf("Schedule = %02d:%02d, want 06:00", cfg.Schedule.Hour, cfg.Schedule.Minute)
		}
		if !cfg.Schedule.RunOnStartup {
			t.Error("Schedule.RunOnStartup = false, want true")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TRENDLENS_SERVER_PORT", "9090")
		t.Setenv("TRENDLENS_FEED_SOURCES", "Frugal, BuyItForLife")
		t.Setenv("TRENDLENS_FEED_POST_LIMIT", "100")
		t.Setenv("TRENDLENS_CLASSIFIER_TEMPERATURE", "0.2")
		t.Setenv("TRENDLENS_STORE_DRIVER", "sqlite")
		t.Setenv("TRENDLENS_STORE_DSN", "file:trends.db")
		t.Setenv("TRENDLENS_LOCK_REDIS_ADDR", "localhost:6379")
		t.Setenv("TRENDLENS_LOCK_TTL", "10m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if len(cfg.Feed.Sources) != 2 || cfg.Feed.Sources[0] != "Frugal" || cfg.Feed.Sources[1] != "BuyItForLife" {
			t.Errorf("Feed.Sources = %v, want [Frugal BuyItForLife]", cfg.Feed.Sources)
		}
		if cfg.Feed.PostLimit != 100 {
			t.Errorf("Feed.PostLimit = %d, want 100", cfg.Feed.PostLimit)
		}
		if cfg.Classifier.Temperature != 0.2 {
			t.Errorf("Classifier.Temperature = %v, want 0.2", cfg.Classifier.Temperature)
		}
		if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "file:trends.db" {
			t.Errorf("Store = %s %s, want sqlite file:trends.db", cfg.Store.Driver, cfg.Store.DSN)
		}
		if cfg.Lock.RedisAddr != "localhost:6379" {
			t.Errorf("Lock.RedisAddr = %s, want localhost:6379", cfg.Lock.RedisAddr)
		}
		if cfg.Lock.TTL != 10*time.Minute {
			t.Errorf("Lock.TTL = %v, want 10m", cfg.Lock.TTL)
		}
	})

	t.Run("uses functions host port when set", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("FUNCTIONS_CUSTOMHANDLER_PORT", "7071")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7071" {
			t.Errorf("Server.Port = %s, want 7071", cfg.Server.Port)
		}
	})

	t.Run("fails without classifier API key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TRENDLENS_CLASSIFIER_API_KEY", "")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "TRENDLENS_CLASSIFIER_API_KEY") {
			t.Errorf("error = %v, want mention of TRENDLENS_CLASSIFIER_API_KEY", err)
		}
	})

	t.Run("fails with unknown store driver", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TRENDLENS_STORE_DRIVER", "cosmos")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Feed: FeedConfig{
				Sources:      []string{"Frugal"},
				PostLimit:    10,
				ClientID:     "id",
				ClientSecret: "secret",
			},
			Extractor: ExtractorConfig{Limit: 50},
			Classifier: ClassifierConfig{
				Endpoint:    "https://example.com",
				APIKey:      "key",
				Deployment:  "dep",
				Temperature: 1,
				TopP:        1,
			},
			Store: StoreConfig{Driver: "memory", Table: "products"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid memory config", mutate: func(c *Config) {}, wantErr: false},
		{name: "no sources", mutate: func(c *Config) { c.Feed.Sources = nil }, wantErr: true},
		{name: "zero post limit", mutate: func(c *Config) { c.Feed.PostLimit = 0 }, wantErr: true},
		{name: "missing feed secret", mutate: func(c *Config) { c.Feed.ClientSecret = "" }, wantErr: true},
		{name: "zero extractor limit", mutate: func(c *Config) { c.Extractor.Limit = 0 }, wantErr: true},
		{name: "missing deployment", mutate: func(c *Config) { c.Classifier.Deployment = "" }, wantErr: true},
		{name: "temperature too high", mutate: func(c *Config) { c.Classifier.Temperature = 2.5 }, wantErr: true},
		{name: "top_p too high", mutate: func(c *Config) { c.Classifier.TopP = 1.5 }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: true},
		{name: "sqlite with dsn", mutate: func(c *Config) { c.Store.Driver = "sqlite"; c.Store.DSN = ":memory:" }, wantErr: false},
		{name: "empty table", mutate: func(c *Config) { c.Store.Table = "" }, wantErr: true},
		{name: "bad hour", mutate: func(c *Config) { c.Schedule.Hour = 24 }, wantErr: true},
		{name: "bad minute", mutate: func(c *Config) { c.Schedule.Minute = -1 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCleanSources(t *testing.T) {
	got := cleanSources([]string{" Frugal ", "", "  ", "buyitforlife"})
	if strings.Join(got, ",") != "Frugal,buyitforlife" {
		t.Errorf("cleanSources() = %v, want [Frugal buyitforlife]", got)
	}
}
