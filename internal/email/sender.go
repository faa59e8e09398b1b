// Package email delivers transactional mail through Brevo or SMTP.
package email

import (
	"context"
	"fmt"

	"campaign_portal_backend/platform/config"
)

// Sender delivers the portal's transactional emails.
type Sender interface {
	SendPartnerInviteEmail(ctx context.Context, toEmail, contactName, companyName, inviteURL string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender drops every email. Used when EMAIL_ENABLED is false.
type NoopSender struct{}

func (NoopSender) SendPartnerInviteEmail(ctx context.Context, toEmail, contactName, companyName, inviteURL string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// NewSender picks the provider named by EMAIL_PROVIDER.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "brevo":
		return NewBrevoSender(cfg.GetBrevoAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "smtp":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.GetEmailProvider())
	}
}

// renderPartnerInvite builds the subject and body shared by both providers.
func renderPartnerInvite(contactName, companyName, inviteURL string) (string, string, error) {
	content, err := renderEmailTemplate("partner_invite.html", partnerInviteEmailData{
		baseEmailData: baseEmailData{
			Title:    inviteTitle,
			Heading:  inviteTitle,
			CTALabel: "Set up your partner account",
			CTAURL:   inviteURL,
		},
		ContactName: contactName,
		CompanyName: companyName,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectPartnerInviteFmt, companyName), content, nil
}
