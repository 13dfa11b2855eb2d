package renderdocument

import (
	"fmt"
	"time"

	"maturity-report/internal/common/config"
)

const (
	BackendChrome    = "chrome"
	BackendGotenberg = "gotenberg"
)

// PageOptions are the print settings handed to a backend. Lengths are inches.
type PageOptions struct {
	PaperWidth         float64
	PaperHeight        float64
	MarginTop          float64
	MarginRight        float64
	MarginBottom       float64
	MarginLeft         float64
	Scale              float64
	PrintBackground    bool
	PreferCSSPageSize  bool
	ViewportWidth      int64
	ViewportHeight     int64
	DeviceScale        float64
	ContentLoadTimeout time.Duration
}

type Config struct {
	Backend      string
	Timeout      time.Duration
	Page         PageOptions
	ExecPath     string
	NoSandbox    bool
	GotenbergURL string
}

// DefaultPageOptions is US Letter with the report's margins and scale.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		PaperWidth:         8.5,
		PaperHeight:        11,
		MarginTop:          0.5,
		MarginRight:        0.4,
		MarginBottom:       0.5,
		MarginLeft:         0.4,
		Scale:              0.85,
		PrintBackground:    true,
		PreferCSSPageSize:  true,
		ViewportWidth:      1200,
		ViewportHeight:     1600,
		DeviceScale:        2,
		ContentLoadTimeout: 60 * time.Second,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendChrome,
		Timeout: 90 * time.Second,
		Page:    DefaultPageOptions(),
	}
}

// NewConfig maps the application render section onto the stage config.
func NewConfig(rc config.RenderConfig) *Config {
	printBackground := true
	if rc.Page.PrintBackground != nil {
		printBackground = *rc.Page.PrintBackground
	}
	return &Config{
		Backend: rc.Backend,
		Timeout: config.GetDuration(rc.Timeout),
		Page: PageOptions{
			PaperWidth:         rc.Page.Width,
			PaperHeight:        rc.Page.Height,
			MarginTop:          rc.Page.MarginTop,
			MarginRight:        rc.Page.MarginRight,
			MarginBottom:       rc.Page.MarginBottom,
			MarginLeft:         rc.Page.MarginLeft,
			Scale:              rc.Page.Scale,
			PrintBackground:    printBackground,
			PreferCSSPageSize:  true,
			ViewportWidth:      rc.Page.ViewportWidth,
			ViewportHeight:     rc.Page.ViewportHeight,
			DeviceScale:        rc.Page.DeviceScale,
			ContentLoadTimeout: config.GetDuration(rc.ContentLoadTimeout),
		},
		ExecPath:     rc.Chrome.ExecPath,
		NoSandbox:    rc.Chrome.NoSandbox,
		GotenbergURL: rc.Gotenberg.URL,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	switch c.Backend {
	case BackendChrome:
	case BackendGotenberg:
		if c.GotenbergURL == "" {
			return fmt.Errorf("gotenberg url is required")
		}
	default:
		return fmt.Errorf("unknown render backend %q", c.Backend)
	}
	p := c.Page
	if p.PaperWidth <= 0 || p.PaperHeight <= 0 {
		return fmt.Errorf("paper size must be positive")
	}
	if p.Scale < 0.1 || p.Scale > 2 {
		return fmt.Errorf("scale must be between 0.1 and 2")
	}
	if p.ViewportWidth <= 0 || p.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive")
	}
	if p.ContentLoadTimeout <= 0 || p.ContentLoadTimeout > c.Timeout {
		return fmt.Errorf("content load timeout must be positive and within the render timeout")
	}
	return nil
}
