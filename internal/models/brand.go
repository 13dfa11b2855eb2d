// internal/models/brand.go
package models

// Static brand and contact details shared by the report and the email body.
const (
	BrandName       = "BRAVE CONCEPT AI"
	BrandTeam       = "The Brave Concept AI Team"
	ReportTitle     = "AI MATURITY ASSESSMENT REPORT"
	BrandTagline    = "Bold Ideas. Human Roots. Ethical By Design."
	ContactEmail    = "info@braveconcept.ai"
	ContactWeb      = "braveconcept.ai"
	ContactPhone    = "(802) 560-8669"
	ContactBot      = "Ask BellaBot at braveconcept.ai"
	BookingURL      = "https://calendly.com/tony-braveconcept/30min"
	BookingOffer    = "Book Your Free 30-Minute Strategy Session"
	IndustrySources = "Industry insights: McKinsey Global AI Survey 2024, Deloitte State of AI 2024, Accenture AI Maturity Research 2024, PwC Responsible AI Survey 2024"
)
