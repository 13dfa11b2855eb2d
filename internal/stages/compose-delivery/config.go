package composedelivery

import (
	"fmt"
	"net/mail"

	"maturity-report/internal/common/config"
)

type Config struct {
	From            string
	ReplyTo         string
	ListUnsubscribe string
	Mailer          string
}

func DefaultConfig() *Config {
	return &Config{
		From:            "Brave Concept AI <reports@braveconcept.ai>",
		ReplyTo:         "info@braveconcept.ai",
		ListUnsubscribe: "<mailto:unsubscribe@braveconcept.ai>",
		Mailer:          "Brave Concept AI Assessment System",
	}
}

func NewConfig(dc config.DeliveryConfig) *Config {
	return &Config{
		From:            dc.From,
		ReplyTo:         dc.ReplyTo,
		ListUnsubscribe: dc.ListUnsubscribe,
		Mailer:          dc.Mailer,
	}
}

func (c *Config) Validate() error {
	if _, err := mail.ParseAddress(c.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", c.From, err)
	}
	if c.ReplyTo != "" {
		if _, err := mail.ParseAddress(c.ReplyTo); err != nil {
			return fmt.Errorf("invalid reply-to address %q: %w", c.ReplyTo, err)
		}
	}
	return nil
}
