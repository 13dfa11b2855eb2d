package composedelivery

import "maturity-report/internal/common/logger"

const (
	HeaderListUnsubscribe = "List-Unsubscribe"
	HeaderMailer          = "X-Mailer"
	// HeaderVariables carries Variables on transports without a native
	// custom-variables field.
	HeaderVariables = "X-Report-Variables"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a transport independent email.
type Message struct {
	From        string
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
	// Headers are extra MIME headers such as List-Unsubscribe.
	Headers map[string]string
	// Variables is a small JSON-able payload for provider side analytics.
	Variables map[string]string
	ReportID  string
}

type ServiceDependencies struct {
	Logger logger.Logger
}
