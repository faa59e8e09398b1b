package adapters

import (
	"context"

	"campaign_portal_backend/internal/notification"
	pipelineservice "campaign_portal_backend/internal/pipeline/service"
	pipelinetransport "campaign_portal_backend/internal/pipeline/transport"
	"campaign_portal_backend/internal/scheduler"
	"campaign_portal_backend/platform/logger"
)

// InviteQueue enqueues invite tasks for the scheduler worker.
type InviteQueue interface {
	EnqueuePartnerInvite(ctx context.Context, payload scheduler.PartnerInvitePayload) (string, error)
}

// InviteMailer sends the invite email right away.
type InviteMailer interface {
	SendPartnerInvite(ctx context.Context, invite notification.PartnerInvite) error
}

// QueuedInviteDispatcher hands closed-won invites to asynq.
type QueuedInviteDispatcher struct {
	queue InviteQueue
	log   *logger.Logger
}

func NewQueuedInviteDispatcher(queue InviteQueue, log *logger.Logger) *QueuedInviteDispatcher {
	return &QueuedInviteDispatcher{queue: queue, log: log}
}

func (d *QueuedInviteDispatcher) DispatchPartnerInvite(ctx context.Context, invite pipelineservice.PartnerInvite) (string, error) {
	taskID, err := d.queue.EnqueuePartnerInvite(ctx, scheduler.PartnerInvitePayload{
		ProspectID:   invite.ProspectID.String(),
		ContactName:  invite.ContactName,
		ContactEmail: invite.ContactEmail,
		CompanyName:  invite.CompanyName,
	})
	if err != nil {
		return "", err
	}

	d.log.Info("partner invite queued", "prospectId", invite.ProspectID, "taskId", taskID)
	return pipelinetransport.InviteStatusQueued, nil
}

// DirectInviteDispatcher sends the invite inside the request. Used when no
// Redis is configured.
type DirectInviteDispatcher struct {
	mailer InviteMailer
}

func NewDirectInviteDispatcher(mailer InviteMailer) *DirectInviteDispatcher {
	return &DirectInviteDispatcher{mailer: mailer}
}

func (d *DirectInviteDispatcher) DispatchPartnerInvite(ctx context.Context, invite pipelineservice.PartnerInvite) (string, error) {
	err := d.mailer.SendPartnerInvite(ctx, notification.PartnerInvite{
		ProspectID:   invite.ProspectID,
		ContactName:  invite.ContactName,
		ContactEmail: invite.ContactEmail,
		CompanyName:  invite.CompanyName,
	})
	if err != nil {
		return "", err
	}
	return pipelinetransport.InviteStatusSent, nil
}

var (
	_ pipelineservice.InviteDispatcher = (*QueuedInviteDispatcher)(nil)
	_ pipelineservice.InviteDispatcher = (*DirectInviteDispatcher)(nil)
)
