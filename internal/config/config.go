package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Region    RegionConfig    `yaml:"region" mapstructure:"region"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Vision    VisionConfig    `yaml:"vision" mapstructure:"vision"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RegionConfig names the administrative area the pipeline covers.
type RegionConfig struct {
	City       string `yaml:"city" mapstructure:"city"`
	Country    string `yaml:"country" mapstructure:"country"`
	AdminLevel int    `yaml:"admin_level" mapstructure:"admin_level"`
}

// Fallback is the sentinel address used when no address tags exist.
func (r RegionConfig) Fallback() string {
	return r.City + ", " + r.Country
}

// OverpassConfig configures the upstream POI fetch.
type OverpassConfig struct {
	BaseURL         string          `yaml:"base_url" mapstructure:"base_url"`
	UserAgent       string          `yaml:"user_agent" mapstructure:"user_agent"`
	Amenities       []string        `yaml:"amenities" mapstructure:"amenities"`
	QueryTimeout    int             `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
	HTTPTimeout     time.Duration   `yaml:"http_timeout" mapstructure:"http_timeout"`
	CourtesyPause   time.Duration   `yaml:"courtesy_pause" mapstructure:"courtesy_pause"`
	MaxAttempts     int             `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffSchedule []time.Duration `yaml:"backoff_schedule" mapstructure:"backoff_schedule"`
}

// SearchConfig configures website discovery.
type SearchConfig struct {
	MaxResults       int           `yaml:"max_results" mapstructure:"max_results"`
	Delay            time.Duration `yaml:"delay" mapstructure:"delay"`
	RulesPath        string        `yaml:"rules_path" mapstructure:"rules_path"`
	RateLimit        float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout" mapstructure:"reset_timeout"`
}

// JinaConfig holds Jina search and reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (hosted renderer).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings for menu extraction.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ScrapeConfig configures website fetching during enrichment.
type ScrapeConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	EntityDelay   time.Duration `yaml:"entity_delay" mapstructure:"entity_delay"`
	SubfetchDelay time.Duration `yaml:"subfetch_delay" mapstructure:"subfetch_delay"`
	MinItems      int           `yaml:"min_items" mapstructure:"min_items"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// BrowserConfig configures JS rendering.
type BrowserConfig struct {
	Renderers   []string      `yaml:"renderers" mapstructure:"renderers"`
	NavTimeout  time.Duration `yaml:"nav_timeout" mapstructure:"nav_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	Settle      time.Duration `yaml:"settle" mapstructure:"settle"`
	ExecPath    string        `yaml:"exec_path" mapstructure:"exec_path"`
}

// VisionConfig configures menu-file extraction.
type VisionConfig struct {
	MaxPages     int       `yaml:"max_pages" mapstructure:"max_pages"`
	DPI          int       `yaml:"dpi" mapstructure:"dpi"`
	MinTextChars int       `yaml:"min_text_chars" mapstructure:"min_text_chars"`
	MaxTextChars int       `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	MaxFileBytes int64     `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	OCR          OCRConfig `yaml:"ocr" mapstructure:"ocr"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// StoreConfig configures the database the clean snapshot is seeded into.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OutputConfig configures snapshot files.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GRAZBITES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("region.city", "Graz")
	v.SetDefault("region.country", "Austria")
	v.SetDefault("region.admin_level", 6)

	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.user_agent", "GrazRestaurantChatbot/1.0")
	v.SetDefault("overpass.amenities", []string{"restaurant", "cafe", "fast_food", "bar", "pub", "biergarten"})
	v.SetDefault("overpass.query_timeout_secs", 90)
	v.SetDefault("overpass.http_timeout", 120*time.Second)
	v.SetDefault("overpass.courtesy_pause", time.Second)
	v.SetDefault("overpass.max_attempts", 3)
	v.SetDefault("overpass.backoff_schedule", []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second})

	v.SetDefault("search.max_results", 8)
	v.SetDefault("search.delay", 3*time.Second)
	v.SetDefault("search.rate_limit", 1.0)
	v.SetDefault("search.failure_threshold", 5)
	v.SetDefault("search.reset_timeout", 2*time.Minute)

	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("anthropic.temperature", 0.1)

	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; GrazRestaurantChatbot/1.0; +https://github.com/grazbites/scraper)")
	v.SetDefault("scrape.timeout", 15*time.Second)
	v.SetDefault("scrape.entity_delay", 2*time.Second)
	v.SetDefault("scrape.subfetch_delay", time.Second)
	v.SetDefault("scrape.min_items", 3)
	v.SetDefault("scrape.max_body_bytes", 5*1024*1024)

	v.SetDefault("browser.renderers", []string{"chrome"})
	v.SetDefault("browser.nav_timeout", 20*time.Second)
	v.SetDefault("browser.idle_timeout", 10*time.Second)
	v.SetDefault("browser.settle", time.Second)

	v.SetDefault("vision.max_pages", 5)
	v.SetDefault("vision.dpi", 200)
	v.SetDefault("vision.min_text_chars", 20)
	v.SetDefault("vision.max_text_chars", 8000)
	v.SetDefault("vision.max_file_bytes", 20*1024*1024)
	v.SetDefault("vision.ocr.provider", "fitz")
	v.SetDefault("vision.ocr.pdftotext_path", "pdftotext")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/grazbites.db")
	v.SetDefault("output.dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
