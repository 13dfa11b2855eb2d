// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, and validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like DELIVERY_MAILGUN_DOMAIN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets and platform values from the conventional
// variable names when the config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.Address = ":" + val
	}

	if cfg.Delivery.Mailgun.APIKey == "" {
		cfg.Delivery.Mailgun.APIKey = os.Getenv("MAILGUN_API_KEY")
	}
	if cfg.Delivery.Mailgun.Domain == "" {
		cfg.Delivery.Mailgun.Domain = os.Getenv("MAILGUN_DOMAIN")
	}
	if cfg.Delivery.SES.Region == "" {
		cfg.Delivery.SES.Region = os.Getenv("AWS_REGION")
	}

	if cfg.Delivery.SMTP.Host == "" {
		cfg.Delivery.SMTP.Host = os.Getenv("SMTP_HOST")
	}
	if cfg.Delivery.SMTP.Username == "" {
		cfg.Delivery.SMTP.Username = os.Getenv("SMTP_USERNAME")
	}
	if cfg.Delivery.SMTP.Password == "" {
		cfg.Delivery.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	}

	if cfg.Render.Gotenberg.URL == "" {
		cfg.Render.Gotenberg.URL = os.Getenv("GOTENBERG_URL")
	}
	if cfg.Render.Chrome.ExecPath == "" {
		cfg.Render.Chrome.ExecPath = os.Getenv("CHROME_PATH")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ai-maturity-report"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":3000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 180000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 10 << 20
	}
	if cfg.Server.ShutdownGrace == 0 {
		cfg.Server.ShutdownGrace = 30000
	}

	if cfg.Report.IDPrefix == "" {
		cfg.Report.IDPrefix = "BC"
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "UTC"
	}

	// Render defaults: US Letter, 0.5in/0.4in margins, 85% scale
	if cfg.Render.Backend == "" {
		cfg.Render.Backend = "chrome"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 90000
	}
	if cfg.Render.ContentLoadTimeout == 0 {
		cfg.Render.ContentLoadTimeout = 60000
	}
	page := &cfg.Render.Page
	if page.Width == 0 {
		page.Width = 8.5
	}
	if page.Height == 0 {
		page.Height = 11
	}
	if page.MarginTop == 0 {
		page.MarginTop = 0.5
	}
	if page.MarginBottom == 0 {
		page.MarginBottom = 0.5
	}
	if page.MarginLeft == 0 {
		page.MarginLeft = 0.4
	}
	if page.MarginRight == 0 {
		page.MarginRight = 0.4
	}
	if page.Scale == 0 {
		page.Scale = 0.85
	}
	if page.PrintBackground == nil {
		printBackground := true
		page.PrintBackground = &printBackground
	}
	if page.ViewportWidth == 0 {
		page.ViewportWidth = 1200
	}
	if page.ViewportHeight == 0 {
		page.ViewportHeight = 1600
	}
	if page.DeviceScale == 0 {
		page.DeviceScale = 2
	}

	// Delivery defaults
	if cfg.Delivery.Provider == "" {
		cfg.Delivery.Provider = "mailgun"
	}
	if cfg.Delivery.ReplyTo == "" {
		cfg.Delivery.ReplyTo = "info@braveconcept.ai"
	}
	if cfg.Delivery.ListUnsubscribe == "" {
		cfg.Delivery.ListUnsubscribe = "<mailto:unsubscribe@braveconcept.ai>"
	}
	if cfg.Delivery.Mailer == "" {
		cfg.Delivery.Mailer = "Brave Concept AI Assessment System"
	}
	if cfg.Delivery.Timeout == 0 {
		cfg.Delivery.Timeout = 30000
	}
	if cfg.Delivery.Mailgun.BaseURL == "" {
		cfg.Delivery.Mailgun.BaseURL = "https://api.mailgun.net"
	}
	if cfg.Delivery.SMTP.Port == 0 {
		cfg.Delivery.SMTP.Port = 587
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Render.Backend {
	case "chrome":
	case "gotenberg":
		if cfg.Render.Gotenberg.URL == "" {
			return fmt.Errorf("render.gotenberg.url is required for the gotenberg backend")
		}
	default:
		return fmt.Errorf("render.backend must be chrome or gotenberg, got %q", cfg.Render.Backend)
	}
	if cfg.Render.ContentLoadTimeout > cfg.Render.Timeout {
		return fmt.Errorf("render.content_load_timeout must not exceed render.timeout")
	}

	if cfg.Delivery.From == "" {
		return fmt.Errorf("delivery.from is required")
	}
	switch cfg.Delivery.Provider {
	case "mailgun":
		if cfg.Delivery.Mailgun.Domain == "" || cfg.Delivery.Mailgun.APIKey == "" {
			return fmt.Errorf("delivery.mailgun.domain and delivery.mailgun.api_key are required")
		}
	case "ses":
		if cfg.Delivery.SES.Region == "" {
			return fmt.Errorf("delivery.ses.region is required")
		}
	case "smtp":
		if cfg.Delivery.SMTP.Host == "" {
			return fmt.Errorf("delivery.smtp.host is required")
		}
		if cfg.Delivery.SMTP.Port <= 0 || cfg.Delivery.SMTP.Port > 65535 {
			return fmt.Errorf("delivery.smtp.port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("delivery.provider must be mailgun, ses or smtp, got %q", cfg.Delivery.Provider)
	}

	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
