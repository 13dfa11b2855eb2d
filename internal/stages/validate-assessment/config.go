package validateassessment

import (
	"fmt"
	"regexp"
	"time"

	"maturity-report/internal/common/config"
)

var idPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

type Config struct {
	// IDPrefix starts every generated report id.
	IDPrefix string
	// Location is used to format the default assessment date.
	Location *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		IDPrefix: "BC",
		Location: time.UTC,
	}
}

// NewConfig maps the application report section onto the stage config.
func NewConfig(rc config.ReportConfig) (*Config, error) {
	loc, err := time.LoadLocation(rc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", rc.Timezone, err)
	}
	return &Config{IDPrefix: rc.IDPrefix, Location: loc}, nil
}

func (c *Config) Validate() error {
	if !idPrefixPattern.MatchString(c.IDPrefix) {
		return fmt.Errorf("id prefix must be alphanumeric, got %q", c.IDPrefix)
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}
