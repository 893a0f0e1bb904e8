package email

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// DefaultHost is the SendGrid API host
const DefaultHost = "https://api.sendgrid.com"

const sendEndpoint = "/v3/mail/send"

// Service emails the sales team about new and unsynced records
type Service struct {
	fromEmail   string
	fromName    string
	teamEmail   string
	sendGridKey string
	host        string
	useSendGrid bool
}

// NewService creates a new email service.
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode).
// An empty teamEmail disables the service.
func NewService(fromEmail, fromName, teamEmail, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	switch {
	case teamEmail == "":
		log.Printf("ℹ️  Team emails disabled (no TEAM_EMAIL configured)")
	case useSendGrid:
		log.Printf("✅ Team emails enabled with SendGrid")
	default:
		log.Printf("⚠️  Team emails in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		teamEmail:   teamEmail,
		sendGridKey: sendGridAPIKey,
		host:        DefaultHost,
		useSendGrid: useSendGrid,
	}
}

// WithHost points the service at another SendGrid-compatible host
func (s *Service) WithHost(host string) *Service {
	s.host = host
	return s
}

// IsEnabled returns true if a team address is configured
func (s *Service) IsEnabled() bool {
	return s != nil && s.teamEmail != ""
}

// NotifyNewLead emails the details of a lead added from the dashboard
func (s *Service) NotifyNewLead(ctx context.Context, lead models.Lead) error {
	if !s.IsEnabled() {
		return nil
	}

	subject := fmt.Sprintf("New lead %s: %s", lead.LeadNo, lead.CompanyName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>New lead %s</h2>
			<table>
				<tr><td>Company</td><td>%s</td></tr>
				<tr><td>Contact</td><td>%s (%s, %s)</td></tr>
				<tr><td>Location</td><td>%s, %s</td></tr>
				<tr><td>Source</td><td>%s, received by %s</td></tr>
			</table>
		</body>
		</html>
	`, esc(lead.LeadNo), esc(lead.CompanyName), esc(lead.PersonName), esc(lead.PhoneNumber), esc(lead.Email),
		esc(lead.Location), esc(lead.State), esc(lead.Source), esc(lead.ReceivedBy))

	plainText := fmt.Sprintf(`New lead %s

Company: %s
Contact: %s (%s, %s)
Location: %s, %s
Source: %s, received by %s
`, lead.LeadNo, lead.CompanyName, lead.PersonName, lead.PhoneNumber, lead.Email,
		lead.Location, lead.State, lead.Source, lead.ReceivedBy)

	return s.send(ctx, subject, body, plainText)
}

// NotifyUnsynced emails a warning that a record only exists locally
func (s *Service) NotifyUnsynced(ctx context.Context, kind, ref string, cause error) error {
	if !s.IsEnabled() {
		return nil
	}

	subject := fmt.Sprintf("Not synced to the sheet: %s %s", kind, ref)
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Saved locally, not synced to the sheet</h2>
			<p>The %s <strong>%s</strong> could not be written to the sheet and has to be entered by hand.</p>
			<p>Error: %s</p>
		</body>
		</html>
	`, esc(kind), esc(ref), esc(reason))
	plainText := fmt.Sprintf("The %s %s could not be written to the sheet and has to be entered by hand.\n\nError: %s\n",
		kind, ref, reason)

	return s.send(ctx, subject, body, plainText)
}

func (s *Service) send(ctx context.Context, subject, htmlBody, plainTextBody string) error {
	if s.useSendGrid {
		return s.sendViaSendGrid(ctx, subject, htmlBody, plainTextBody)
	}

	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s", s.teamEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(ctx context.Context, subject, htmlBody, plainTextBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Sales team", s.teamEmail)

	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	request := sendgrid.GetRequest(s.sendGridKey, sendEndpoint, s.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent to %s (SendGrid status: %d)", s.teamEmail, response.StatusCode)
	return nil
}

func esc(s string) string { return html.EscapeString(s) }
