package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	SubMenu   SubMenuConfig   `yaml:"submenu" mapstructure:"submenu"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	PDF       PDFConfig       `yaml:"pdf" mapstructure:"pdf"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings for the page classifier.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures the HTTP page fetcher and its resource guards.
type FetchConfig struct {
	TimeoutSecs    int   `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxInFlight    int   `yaml:"max_in_flight" mapstructure:"max_in_flight"`
	MaxBodyBytes   int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	CacheTTLSecs   int   `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	MobileViewport bool  `yaml:"mobile_viewport" mapstructure:"mobile_viewport"`
}

// DiscoveryConfig configures the menu locator state machine. The confidence
// thresholds are empirical tuning constants, provisional pending calibration
// against a larger fixture corpus.
type DiscoveryConfig struct {
	OriginalConfidence   int      `yaml:"original_confidence" mapstructure:"original_confidence"`
	DiscoveredConfidence int      `yaml:"discovered_confidence" mapstructure:"discovered_confidence"`
	RecurseConfidence    int      `yaml:"recurse_confidence" mapstructure:"recurse_confidence"`
	MaxDepth             int      `yaml:"max_depth" mapstructure:"max_depth"`
	CommonPaths          []string `yaml:"common_paths" mapstructure:"common_paths"`
}

// SubMenuConfig configures sub-menu page collection.
type SubMenuConfig struct {
	Confidence       int     `yaml:"confidence" mapstructure:"confidence"`
	MaxCandidates    int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxConcurrent    int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	PauseMillis      int     `yaml:"pause_millis" mapstructure:"pause_millis"`
	DedupeSimilarity float64 `yaml:"dedupe_similarity" mapstructure:"dedupe_similarity"`
}

// ExtractConfig bounds item extraction.
type ExtractConfig struct {
	MaxItems       int `yaml:"max_items" mapstructure:"max_items"`
	MaxDescription int `yaml:"max_description" mapstructure:"max_description"`
}

// PDFConfig configures PDF menu downloads.
type PDFConfig struct {
	MaxBytes    int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
	TimeoutSecs int   `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("MENUSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_in_flight", 8)
	v.SetDefault("fetch.max_body_bytes", 2*1024*1024)
	v.SetDefault("fetch.cache_ttl_secs", 300)
	v.SetDefault("discovery.original_confidence", 75)
	v.SetDefault("discovery.discovered_confidence", 40)
	v.SetDefault("discovery.recurse_confidence", 70)
	v.SetDefault("discovery.max_depth", 3)
	v.SetDefault("discovery.common_paths", []string{
		"/menu", "/menus", "/food", "/food-menu", "/our-menu",
		"/order", "/order-online", "/dining", "/eat",
		"/lunch", "/dinner", "/breakfast", "/brunch",
	})
	v.SetDefault("submenu.confidence", 60)
	v.SetDefault("submenu.max_candidates", 8)
	v.SetDefault("submenu.max_concurrent", 4)
	v.SetDefault("submenu.pause_millis", 500)
	v.SetDefault("submenu.dedupe_similarity", 0.85)
	v.SetDefault("extract.max_items", 150)
	v.SetDefault("extract.max_description", 300)
	v.SetDefault("pdf.max_bytes", 10*1024*1024)
	v.SetDefault("pdf.timeout_secs", 30)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_ocr_model", "pixtral-large-latest")

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
