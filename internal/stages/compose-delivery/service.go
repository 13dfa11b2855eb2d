package composedelivery

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"maturity-report/internal/common/logger"
	"maturity-report/internal/models"
	computemetrics "maturity-report/internal/stages/compute-metrics"
)

const StageName = "compose-delivery"

//go:embed templates/email.html.tmpl
var emailTemplateText string

var emailTemplate = template.Must(template.New("email").Parse(emailTemplateText))

// Variables attached to every report email.
var reportVariables = map[string]string{
	"source": "ai-assessment",
	"type":   "automated-report",
}

type emailData struct {
	ClientName   string
	OverallScore int
	OverallLevel computemetrics.Level
	Strongest    string
	Weakest      string
	BookingURL   string
	BrandName    string
	ReportTitle  string
	Tagline      string
	Team         string
	ContactEmail string
	ContactWeb   string
	ContactPhone string
}

type Service struct {
	config *Config
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compose-delivery config: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{config: config, logger: log}, nil
}

// Subject is the email subject for company.
func Subject(company string) string {
	return "✅ Your AI Assessment Results Are Ready - " + company
}

// AttachmentName is the PDF filename for reportID.
func AttachmentName(reportID string) string {
	return "AI-Maturity-Report-" + reportID + ".pdf"
}

// Compose builds the delivery message. The PDF bytes are attached untouched.
func (s *Service) Compose(input *models.AssessmentInput, m computemetrics.Metrics, pdf []byte) (*Message, error) {
	data := emailData{
		ClientName:   input.ClientName,
		OverallScore: m.OverallScore,
		OverallLevel: m.OverallLevel,
		Strongest:    m.Strongest.Label(),
		Weakest:      m.Weakest.Label(),
		BookingURL:   models.BookingURL,
		BrandName:    models.BrandName,
		ReportTitle:  models.ReportTitle,
		Tagline:      models.BrandTagline,
		Team:         models.BrandTeam,
		ContactEmail: models.ContactEmail,
		ContactWeb:   models.ContactWeb,
		ContactPhone: models.ContactPhone,
	}

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render email body: %w", err)
	}

	headers := map[string]string{}
	if s.config.ListUnsubscribe != "" {
		headers[HeaderListUnsubscribe] = s.config.ListUnsubscribe
	}
	if s.config.Mailer != "" {
		headers[HeaderMailer] = s.config.Mailer
	}

	variables := make(map[string]string, len(reportVariables))
	for k, v := range reportVariables {
		variables[k] = v
	}

	msg := &Message{
		From:     s.config.From,
		To:       input.RecipientEmail,
		ReplyTo:  s.config.ReplyTo,
		Subject:  Subject(input.CompanyName),
		HTML:     body.String(),
		Text:     plainText(data),
		ReportID: input.ReportID,
		Attachments: []Attachment{{
			Filename:    AttachmentName(input.ReportID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
		Headers:   headers,
		Variables: variables,
	}

	s.logger.Debug("Delivery message composed", map[string]interface{}{
		"reportId":   input.ReportID,
		"to":         msg.To,
		"subject":    msg.Subject,
		"attachment": msg.Attachments[0].Filename,
		"bytes":      len(pdf),
	})
	return msg, nil
}

func plainText(d emailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", d.ClientName)
	b.WriteString("Your AI Maturity Assessment is complete! Here are your key insights:\n\n")
	fmt.Fprintf(&b, "Your AI Maturity Level: %d/5 - %s\n", d.OverallScore, d.OverallLevel)
	fmt.Fprintf(&b, "Strongest Area: %s\n", d.Strongest)
	fmt.Fprintf(&b, "Growth Opportunity: %s\n\n", d.Weakest)
	b.WriteString("Your complete 5-page personalized report is attached.\n\n")
	fmt.Fprintf(&b, "Schedule your free 30-minute strategy session: %s\n\n", d.BookingURL)
	fmt.Fprintf(&b, "Best regards,\n%s\n\n", d.Team)
	fmt.Fprintf(&b, "%s | %s | %s\n", d.ContactEmail, d.ContactWeb, d.ContactPhone)
	return b.String()
}
