// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Report   ReportConfig   `mapstructure:"report"`
	Render   RenderConfig   `mapstructure:"render"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address       string `mapstructure:"address"`
	ReadTimeout   int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout  int    `mapstructure:"write_timeout"` // milliseconds
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes"`
	ShutdownGrace int    `mapstructure:"shutdown_grace"` // milliseconds
}

// ReportConfig holds the defaults applied to incoming assessments.
type ReportConfig struct {
	IDPrefix string `mapstructure:"id_prefix"`
	Timezone string `mapstructure:"timezone"`
}

// --- Rendering collaborator ---

// RenderConfig selects and tunes the HTML to PDF backend.
type RenderConfig struct {
	Backend            string     `mapstructure:"backend"`              // chrome | gotenberg
	Timeout            int        `mapstructure:"timeout"`              // milliseconds
	ContentLoadTimeout int        `mapstructure:"content_load_timeout"` // milliseconds
	Page               PageConfig `mapstructure:"page"`

	Chrome struct {
		ExecPath  string `mapstructure:"exec_path"`
		NoSandbox bool   `mapstructure:"no_sandbox"`
	} `mapstructure:"chrome"`

	Gotenberg struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"gotenberg"`
}

// PageConfig mirrors the print options handed to the renderer. Sizes are inches.
type PageConfig struct {
	Width           float64 `mapstructure:"width"`
	Height          float64 `mapstructure:"height"`
	MarginTop       float64 `mapstructure:"margin_top"`
	MarginRight     float64 `mapstructure:"margin_right"`
	MarginBottom    float64 `mapstructure:"margin_bottom"`
	MarginLeft      float64 `mapstructure:"margin_left"`
	Scale           float64 `mapstructure:"scale"`
	PrintBackground *bool   `mapstructure:"print_background"`
	ViewportWidth   int64   `mapstructure:"viewport_width"`
	ViewportHeight  int64   `mapstructure:"viewport_height"`
	DeviceScale     float64 `mapstructure:"device_scale"`
}

// --- Email collaborator ---

// DeliveryConfig holds the sender identity and the transport settings.
type DeliveryConfig struct {
	Provider        string `mapstructure:"provider"` // mailgun | ses | smtp
	From            string `mapstructure:"from"`
	ReplyTo         string `mapstructure:"reply_to"`
	ListUnsubscribe string `mapstructure:"list_unsubscribe"`
	Mailer          string `mapstructure:"mailer"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds

	Mailgun struct {
		BaseURL string `mapstructure:"base_url"`
		Domain  string `mapstructure:"domain"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"mailgun"`

	SES struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"ses"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
