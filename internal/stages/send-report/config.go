package sendreport

import (
	"fmt"
	"time"

	"maturity-report/internal/common/config"
)

const (
	ProviderMailgun = "mailgun"
	ProviderSES     = "ses"
	ProviderSMTP    = "smtp"
)

const DefaultMailgunBaseURL = "https://api.mailgun.net"

type MailgunConfig struct {
	BaseURL string
	Domain  string
	APIKey  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

type Config struct {
	Provider  string
	Timeout   time.Duration
	Mailgun   MailgunConfig
	SESRegion string
	SMTP      SMTPConfig
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderMailgun,
		Timeout:  30 * time.Second,
		Mailgun:  MailgunConfig{BaseURL: DefaultMailgunBaseURL},
		SMTP:     SMTPConfig{Port: 587, UseTLS: true},
	}
}

// NewConfig maps the application delivery section onto the stage config.
func NewConfig(dc config.DeliveryConfig) *Config {
	cfg := &Config{
		Provider: dc.Provider,
		Timeout:  config.GetDuration(dc.Timeout),
		Mailgun: MailgunConfig{
			BaseURL: dc.Mailgun.BaseURL,
			Domain:  dc.Mailgun.Domain,
			APIKey:  dc.Mailgun.APIKey,
		},
		SESRegion: dc.SES.Region,
		SMTP: SMTPConfig{
			Host:     dc.SMTP.Host,
			Port:     dc.SMTP.Port,
			Username: dc.SMTP.Username,
			Password: dc.SMTP.Password,
			UseTLS:   dc.SMTP.UseTLS,
		},
	}
	if cfg.Mailgun.BaseURL == "" {
		cfg.Mailgun.BaseURL = DefaultMailgunBaseURL
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	switch c.Provider {
	case ProviderMailgun:
		if c.Mailgun.Domain == "" || c.Mailgun.APIKey == "" {
			return fmt.Errorf("mailgun domain and api key are required")
		}
	case ProviderSES:
		if c.SESRegion == "" {
			return fmt.Errorf("ses region is required")
		}
	case ProviderSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("smtp port out of range: %d", c.SMTP.Port)
		}
	default:
		return fmt.Errorf("unknown delivery provider %q", c.Provider)
	}
	return nil
}
