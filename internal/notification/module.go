// Package notification sends partner-facing email and keeps an audit trail
// of domain events. Domain modules publish events and never talk to email
// providers directly.
package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"campaign_portal_backend/internal/email"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/config"
	"campaign_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// PartnerInvite is the email sent to a prospect's contact once the deal is
// won.
type PartnerInvite struct {
	ProspectID   uuid.UUID
	ContactName  string
	ContactEmail string
	CompanyName  string
}

// Module handles notification delivery and event subscriptions.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// InviteURL is the sign-up link for an invite under APP_BASE_URL.
func (m *Module) InviteURL(invite PartnerInvite) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	q := url.Values{}
	q.Set("prospect", invite.ProspectID.String())
	q.Set("email", invite.ContactEmail)
	return base + "/partner/invite?" + q.Encode()
}

// SendPartnerInvite renders and delivers the invite email.
func (m *Module) SendPartnerInvite(ctx context.Context, invite PartnerInvite) error {
	if strings.TrimSpace(invite.ContactEmail) == "" {
		return fmt.Errorf("partner invite for prospect %s has no contact email", invite.ProspectID)
	}

	name := invite.ContactName
	if strings.TrimSpace(name) == "" {
		name = "there"
	}

	if err := m.sender.SendPartnerInviteEmail(ctx, invite.ContactEmail, name, invite.CompanyName, m.InviteURL(invite)); err != nil {
		invitesSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("send partner invite: %w", err)
	}

	invitesSent.WithLabelValues("sent").Inc()
	m.log.Info("partner invite sent", "prospectId", invite.ProspectID, "company", invite.CompanyName)
	return nil
}

// RegisterHandlers subscribes the audit trail to the domain events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ActiveRoleChanged{}.EventName(), m)

	bus.Subscribe(events.ProspectCreated{}.EventName(), m)
	bus.Subscribe(events.ProspectStageChanged{}.EventName(), m)
	bus.Subscribe(events.PartnerInviteFailed{}.EventName(), m)
	bus.Subscribe(events.CampaignStatusUpdated{}.EventName(), m)

	bus.Subscribe(events.BillablesApproved{}.EventName(), m)
	bus.Subscribe(events.BillablesDisputed{}.EventName(), m)

	bus.Subscribe(events.AssetFeedbackUpdated{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle writes one structured audit line per event.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	entry, ok := auditEntryFor(event)
	if !ok {
		m.log.Warn("notification module received unhandled event", "event", event.EventName())
		return nil
	}

	auditEvents.WithLabelValues(event.EventName()).Inc()
	m.log.WithContext(ctx).Info("audit", entry.attrs(event)...)
	return nil
}
