package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"paperwatch/internal/core"
)

// Config holds all application configuration
type Config struct {
	Arxiv        Arxiv        `mapstructure:"arxiv"`
	AI           AI           `mapstructure:"ai"`
	Storage      Storage      `mapstructure:"storage"`
	Notification Notification `mapstructure:"notification"`
	Schedule     Schedule     `mapstructure:"schedule"`
	Logging      Logging      `mapstructure:"logging"`
}

// Arxiv holds search configuration
type Arxiv struct {
	Keywords             []string        `mapstructure:"keywords"`
	Categories           []string        `mapstructure:"categories"`
	MaxResults           int             `mapstructure:"max_results"`
	SortBy               string          `mapstructure:"sort_by"`    // submittedDate, lastUpdatedDate, relevance
	SortOrder            string          `mapstructure:"sort_order"` // ascending, descending
	EnableRelevanceScore bool            `mapstructure:"enable_relevance_score"`
	MultiLevelSort       []core.SortSpec `mapstructure:"multi_level_sort"`
}

// AI holds AI/LLM configuration
type AI struct {
	Enabled           bool    `mapstructure:"enabled"`
	Provider          string  `mapstructure:"provider"` // openai, anthropic, ollama, gemini
	MaxWorkers        int     `mapstructure:"max_workers"`
	EnableSummary     bool    `mapstructure:"enable_summary"`
	EnableTranslation bool    `mapstructure:"enable_translation"`
	EnableInsights    bool    `mapstructure:"enable_insights"`
	EnableFilter      bool    `mapstructure:"enable_filter"`
	FilterKeywords    string  `mapstructure:"filter_keywords"`
	FilterThreshold   float64 `mapstructure:"filter_threshold"`
	TargetLanguage    string  `mapstructure:"target_language"`
	PromptsFile       string  `mapstructure:"prompts_file"`
	SendReport        bool    `mapstructure:"send_markdown_report"`
	ReportDir         string  `mapstructure:"markdown_dir"`

	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Ollama    ProviderConfig `mapstructure:"ollama"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
}

// ProviderConfig holds per-provider connection and decoding settings
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// ProviderSettings returns the settings block for the configured provider.
// "claude" is accepted as an alias for anthropic.
func (a AI) ProviderSettings() (string, ProviderConfig) {
	switch strings.ToLower(a.Provider) {
	case "anthropic", "claude":
		return "anthropic", a.Anthropic
	case "ollama":
		return "ollama", a.Ollama
	case "gemini":
		return "gemini", a.Gemini
	default:
		return "openai", a.OpenAI
	}
}

// Storage holds data directory and cache configuration
type Storage struct {
	DataDir       string `mapstructure:"data_dir"`
	PDFDir        string `mapstructure:"pdf_dir"`
	Format        string `mapstructure:"format"` // json, csv, both
	DownloadPDF   bool   `mapstructure:"download_pdf"`
	CacheEnabled  bool   `mapstructure:"cache_enabled"`
	CacheFile     string `mapstructure:"cache_file"`
	CacheMaxItems int    `mapstructure:"cache_max_items"`
	AutoCleanup   bool   `mapstructure:"auto_cleanup"`
}

// Notification holds delivery channel configuration
type Notification struct {
	Enabled     bool          `mapstructure:"enabled"`
	Method      string        `mapstructure:"method"` // email, webhook
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  string        `mapstructure:"retry_delay"`
	Email       EmailConfig   `mapstructure:"email"`
	Webhook     WebhookConfig `mapstructure:"webhook"`
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPServer string   `mapstructure:"smtp_server"`
	SMTPPort   int      `mapstructure:"smtp_port"`
	Sender     string   `mapstructure:"sender"`
	Password   string   `mapstructure:"password"`
	Recipients []string `mapstructure:"recipients"`
}

// WebhookConfig holds webhook delivery configuration
type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Method string `mapstructure:"method"` // POST, PUT
}

// Schedule holds the daily scheduler configuration
type Schedule struct {
	Enabled    bool   `mapstructure:"enabled"`
	Time       string `mapstructure:"time"` // HH:MM local time
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from file, environment, and defaults.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".paperwatch")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix("PAPERWATCH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("arxiv.max_results", 50)
	viper.SetDefault("arxiv.sort_by", "submittedDate")
	viper.SetDefault("arxiv.sort_order", "descending")
	viper.SetDefault("arxiv.enable_relevance_score", true)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.max_workers", 4)
	viper.SetDefault("ai.enable_summary", true)
	viper.SetDefault("ai.enable_translation", true)
	viper.SetDefault("ai.enable_insights", true)
	viper.SetDefault("ai.enable_filter", false)
	viper.SetDefault("ai.filter_threshold", 0.7)
	viper.SetDefault("ai.target_language", "zh")
	viper.SetDefault("ai.prompts_file", "./prompts/prompts.yaml")
	viper.SetDefault("ai.markdown_dir", "./data/reports")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.max_tokens", 1000)
	viper.SetDefault("ai.openai.temperature", 0.7)
	viper.SetDefault("ai.anthropic.model", "claude-3-5-sonnet-20241022")
	viper.SetDefault("ai.anthropic.base_url", "https://api.anthropic.com/v1")
	viper.SetDefault("ai.anthropic.max_tokens", 1000)
	viper.SetDefault("ai.anthropic.temperature", 0.7)
	viper.SetDefault("ai.ollama.model", "llama2")
	viper.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")

	viper.SetDefault("storage.data_dir", "./data/papers")
	viper.SetDefault("storage.pdf_dir", "./data/pdfs")
	viper.SetDefault("storage.format", "both")
	viper.SetDefault("storage.download_pdf", false)
	viper.SetDefault("storage.cache_enabled", true)
	viper.SetDefault("storage.cache_max_items", 5000)
	viper.SetDefault("storage.auto_cleanup", false)

	viper.SetDefault("notification.enabled", false)
	viper.SetDefault("notification.method", "email")
	viper.SetDefault("notification.max_attempts", 3)
	viper.SetDefault("notification.retry_delay", "5s")
	viper.SetDefault("notification.email.smtp_port", 587)
	viper.SetDefault("notification.webhook.method", "POST")

	viper.SetDefault("schedule.enabled", false)
	viper.SetDefault("schedule.time", "09:00")
	viper.SetDefault("schedule.run_on_start", false)

	viper.SetDefault("logging.level", "info")
}

// validate rejects configurations the pipeline cannot run with
func validate(cfg *Config) error {
	if cfg.Arxiv.MaxResults <= 0 {
		return fmt.Errorf("arxiv.max_results must be positive, got %d", cfg.Arxiv.MaxResults)
	}
	if cfg.AI.FilterThreshold < 0 || cfg.AI.FilterThreshold > 1 {
		return fmt.Errorf("ai.filter_threshold must be in [0, 1], got %g", cfg.AI.FilterThreshold)
	}
	if cfg.Notification.Enabled {
		switch cfg.Notification.Method {
		case "email", "webhook":
		default:
			return fmt.Errorf("unsupported notification method: %q", cfg.Notification.Method)
		}
	}
	if cfg.Storage.CacheEnabled && cfg.Storage.CacheFile == "" {
		cfg.Storage.CacheFile = cfg.Storage.DataDir + "/cache.json"
	}
	return nil
}
