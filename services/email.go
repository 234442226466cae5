package services

import (
	"agency_site_go/config"
	"agency_site_go/models"
	"agency_site_go/services/i18n"
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/resend/resend-go/v2"
)

//go:embed emails/*
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// buildEmailWithFallback renders a template in lang, or in English when the
// localized one fails
func buildEmailWithFallback(templateName string, lang string, tmplData interface{}, toEmail string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, lang, tmplData)
	if err != nil {
		log.Printf("Error loading %s email template for lang %s: %v", templateName, lang, err)
		if lang != i18n.DefaultLang {
			htmlBody, textBody, err = loadTemplate(templateName, i18n.DefaultLang, tmplData)
			if err != nil {
				log.Printf("Error loading default 'en' template for %s: %v", templateName, err)
			}
		}
	}

	return &Email{
		To:       []string{toEmail},
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// loadTemplate renders emails/<name>_<lang>.html/.txt, falling back to
// emails/<name>.html/.txt
func loadTemplate(templateName string, lang string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, []byte, error) {
		path := fmt.Sprintf("emails/%s_%s%s", templateName, lang, ext)
		content, err := emailTemplates.ReadFile(path)
		if err != nil {
			path = "emails/" + templateName + ext
			content, err = emailTemplates.ReadFile(path)
			if err != nil {
				return path, nil, fmt.Errorf("failed to read template %s: %w", path, err)
			}
		}
		return path, content, nil
	}

	path, content, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(path).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}

	path, content, err = read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(path).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		log.Printf("✅ Email logged successfully (development mode - not actually sent)")
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n📧 EMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends a copy of email in a goroutine so handlers do not block
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

// SubmissionEmailData is one submission as shown in notification emails
type SubmissionEmailData struct {
	Name         string
	Email        string
	Company      string
	Phone        string
	Service      string
	Message      string
	ReceivedAt   string
	DashboardURL string
}

func submissionEmailData(sub models.ContactSubmission, appURL, lang string, loc *time.Location) SubmissionEmailData {
	notSpecified := i18n.Translate(lang, "admin.dashboard.not_specified")
	orDefault := func(s string) string {
		if s == "" {
			return notSpecified
		}
		return s
	}

	return SubmissionEmailData{
		Name:         SanitizeText(sub.Name),
		Email:        SanitizeText(sub.Email),
		Company:      orDefault(SanitizeText(sub.Company)),
		Phone:        orDefault(SanitizeText(sub.Phone)),
		Service:      ServiceLabel(lang, sub.Service),
		Message:      SanitizeText(sub.Message),
		ReceivedAt:   FormatTimestamp(sub.Timestamp, loc),
		DashboardURL: strings.TrimRight(appURL, "/") + "/admin",
	}
}

// BuildNewSubmissionEmail notifies the agency about one new submission
func BuildNewSubmissionEmail(sub models.ContactSubmission, toEmail, appURL, lang string, loc *time.Location) *Email {
	data := submissionEmailData(sub, appURL, lang, loc)

	email := buildEmailWithFallback("new_submission", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.new_submission", map[string]interface{}{"name": data.Name})
	return email
}

// DigestEmailData contains data for the unread digest template
type DigestEmailData struct {
	Count        int
	Items        []SubmissionEmailData
	DashboardURL string
}

// BuildUnreadDigestEmail summarizes unread submissions
func BuildUnreadDigestEmail(unread []models.ContactSubmission, toEmail, appURL, lang string, loc *time.Location) *Email {
	data := DigestEmailData{
		Count:        len(unread),
		DashboardURL: strings.TrimRight(appURL, "/") + "/admin",
	}
	for _, sub := range unread {
		data.Items = append(data.Items, submissionEmailData(sub, appURL, lang, loc))
	}

	email := buildEmailWithFallback("unread_digest", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.digest", map[string]interface{}{"count": data.Count})
	return email
}

// ServiceLabel returns the localized service name, or "not specified"
func ServiceLabel(lang, service string) string {
	if service == "" || !models.IsValidService(service) {
		return i18n.Translate(lang, "admin.dashboard.not_specified")
	}
	return i18n.Translate(lang, "contact.services."+service)
}

// FormatTimestamp renders a submission time for admins
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
