package notification

import (
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	auditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "notification",
		Name:      "audit_events_total",
		Help:      "Domain events written to the audit log",
	}, []string{"event"})

	invitesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "notification",
		Name:      "partner_invites_total",
		Help:      "Partner invite emails by delivery result",
	}, []string{"result"})
)

// auditEntry is the who/what/which of an audited event.
type auditEntry struct {
	actor   uuid.UUID
	subject string
	id      uuid.UUID
	fields  []any
}

func (e auditEntry) attrs(event events.Event) []any {
	out := []any{
		"event", event.EventName(),
		"occurredAt", event.OccurredAt(),
		"subject", e.subject,
		"subjectId", e.id,
	}
	if e.actor != uuid.Nil {
		out = append(out, "actorId", e.actor)
	}
	return append(out, e.fields...)
}

func auditEntryFor(event events.Event) (auditEntry, bool) {
	switch e := event.(type) {
	case events.ActiveRoleChanged:
		return auditEntry{actor: e.UserID, subject: "user", id: e.UserID, fields: []any{"role", e.Role}}, true
	case events.ProspectCreated:
		return auditEntry{actor: e.CreatedBy, subject: "prospect", id: e.ProspectID,
			fields: []any{"company", e.CompanyName, "stage", e.Stage}}, true
	case events.ProspectStageChanged:
		return auditEntry{actor: e.ChangedBy, subject: "prospect", id: e.ProspectID,
			fields: []any{"from", e.FromStage, "to", e.ToStage}}, true
	case events.PartnerInviteFailed:
		return auditEntry{subject: "prospect", id: e.ProspectID,
			fields: []any{"contactEmail", e.ContactEmail, "reason", e.Reason}}, true
	case events.CampaignStatusUpdated:
		return auditEntry{actor: e.UpdatedBy, subject: "partner", id: e.PartnerID,
			fields: []any{"stage", e.Stage, "priority", e.Priority}}, true
	case events.BillablesApproved:
		return auditEntry{actor: e.ApprovedBy, subject: "master_brand", id: e.MasterBrandID,
			fields: []any{"month", e.BillingMonth, "rows", e.RowCount}}, true
	case events.BillablesDisputed:
		return auditEntry{actor: e.InitiatedBy, subject: "master_brand", id: e.MasterBrandID,
			fields: []any{"month", e.BillingMonth, "rows", e.RowCount, "notes", e.Notes}}, true
	case events.AssetFeedbackUpdated:
		return auditEntry{actor: e.ReviewedBy, subject: "creative_asset", id: e.AssetID,
			fields: []any{"partnerId", e.PartnerID, "status", e.Status}}, true
	}
	return auditEntry{}, false
}
