package scheduler

import (
	"context"
	"fmt"

	"campaign_portal_backend/internal/notification"
	"campaign_portal_backend/platform/config"
	"campaign_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// InviteSender delivers a partner invite email.
type InviteSender interface {
	SendPartnerInvite(ctx context.Context, invite notification.PartnerInvite) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	invites InviteSender
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, invites InviteSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		invites: invites,
		log:     log,
	}
	w.mux = w.newMux()
	return w, nil
}

func (w *Worker) newMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPartnerInvite, w.handlePartnerInvite)
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handlePartnerInvite sends the invite. Malformed payloads are not retried;
// delivery errors are, per asynq's retry policy.
func (w *Worker) handlePartnerInvite(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePartnerInvitePayload(task)
	if err != nil {
		return fmt.Errorf("parse partner invite: %v: %w", err, asynq.SkipRetry)
	}

	prospectID, err := uuid.Parse(payload.ProspectID)
	if err != nil {
		return fmt.Errorf("partner invite prospect id: %v: %w", err, asynq.SkipRetry)
	}

	err = w.invites.SendPartnerInvite(ctx, notification.PartnerInvite{
		ProspectID:   prospectID,
		ContactName:  payload.ContactName,
		ContactEmail: payload.ContactEmail,
		CompanyName:  payload.CompanyName,
	})
	if err != nil {
		w.log.DispatchFailed("partner_invite", payload.ProspectID, err)
		return err
	}
	return nil
}
