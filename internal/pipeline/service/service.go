// Package service implements the pipeline stage engine: prospect lifecycle,
// kanban grouping and partner campaign status.
package service

import (
	"context"
	"strings"
	"time"

	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/internal/pipeline/domain"
	"campaign_portal_backend/internal/pipeline/repository"
	"campaign_portal_backend/internal/pipeline/transport"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/phone"
	"campaign_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const inviteDispatchTimeout = 15 * time.Second

// PartnerInvite is the notification sent to a prospect's contact when the
// deal closes.
type PartnerInvite struct {
	ProspectID   uuid.UUID
	ContactName  string
	ContactEmail string
	CompanyName  string
}

// InviteDispatcher hands a partner invite to the notification side. It returns
// transport.InviteStatusQueued or transport.InviteStatusSent on success.
type InviteDispatcher interface {
	DispatchPartnerInvite(ctx context.Context, invite PartnerInvite) (string, error)
}

// Service provides business logic for the pipeline.
type Service struct {
	prospects repository.ProspectStore
	campaigns repository.CampaignStore
	invites   InviteDispatcher
	eventBus  events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new pipeline service.
func New(prospects repository.ProspectStore, campaigns repository.CampaignStore, invites InviteDispatcher, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		prospects: prospects,
		campaigns: campaigns,
		invites:   invites,
		eventBus:  eventBus,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateProspect(ctx context.Context, actorID uuid.UUID, req transport.CreateProspectRequest) (transport.ProspectResponse, error) {
	stage := req.Stage
	if stage == "" {
		stage = domain.ProspectStageProspecting
	}
	if !domain.IsProspectStage(stage) {
		return transport.ProspectResponse{}, apperr.Validation("invalid prospect stage")
	}

	assignedTo := req.AssignedTo
	if assignedTo == nil {
		assignedTo = &actorID
	}

	now := s.now()
	p := repository.Prospect{
		ID:             uuid.New(),
		CompanyName:    sanitize.Text(req.CompanyName),
		ContactName:    sanitize.Text(req.ContactName),
		ContactEmail:   normalizeEmail(req.ContactEmail),
		ContactPhone:   normalizePhone(req.ContactPhone),
		EstimatedValue: req.EstimatedValue,
		Stage:          stage,
		Notes:          sanitize.TextPtr(&req.Notes),
		Source:         sanitize.TextPtr(&req.Source),
		Industry:       sanitize.TextPtr(&req.Industry),
		CreatedBy:      actorID,
		AssignedTo:     assignedTo,
		StageUpdatedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.CompanyName == "" || p.ContactName == "" {
		return transport.ProspectResponse{}, apperr.Validation("company and contact name are required")
	}

	created, err := s.prospects.CreateProspect(ctx, p)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	s.eventBus.Publish(ctx, events.ProspectCreated{
		BaseEvent:   events.NewBaseEvent(),
		ProspectID:  created.ID,
		CompanyName: created.CompanyName,
		Stage:       created.Stage,
		CreatedBy:   actorID,
	})

	return mapProspect(created), nil
}

func (s *Service) GetProspect(ctx context.Context, id uuid.UUID) (transport.ProspectResponse, error) {
	p, err := s.prospects.GetProspect(ctx, id)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return mapProspect(p), nil
}

func (s *Service) ListProspects(ctx context.Context, req transport.ListProspectsRequest) (transport.ListProspectsResponse, error) {
	params, err := listParams(req)
	if err != nil {
		return transport.ListProspectsResponse{}, err
	}

	items, err := s.prospects.ListProspects(ctx, params)
	if err != nil {
		return transport.ListProspectsResponse{}, err
	}
	totals, err := s.prospects.StageTotals(ctx, params)
	if err != nil {
		return transport.ListProspectsResponse{}, err
	}

	total := 0
	for _, t := range totals {
		total += t.Count
	}

	resp := transport.ListProspectsResponse{Items: make([]transport.ProspectResponse, 0, len(items)), Total: total}
	for _, p := range items {
		resp.Items = append(resp.Items, mapProspect(p))
	}
	return resp, nil
}

// UpdateProspect edits contact and deal fields. It never touches the stage
// or stage_updated_at.
func (s *Service) UpdateProspect(ctx context.Context, id uuid.UUID, req transport.UpdateProspectRequest) (transport.ProspectResponse, error) {
	update := repository.ProspectUpdate{
		ID:             id,
		CompanyName:    sanitize.TextPtr(req.CompanyName),
		ContactName:    sanitize.TextPtr(req.ContactName),
		EstimatedValue: req.EstimatedValue,
		Notes:          sanitize.TextPtr(req.Notes),
		Source:         sanitize.TextPtr(req.Source),
		Industry:       sanitize.TextPtr(req.Industry),
		AssignedTo:     req.AssignedTo,
		UpdatedAt:      s.now(),
	}
	if req.ContactEmail != nil {
		email := normalizeEmail(*req.ContactEmail)
		update.ContactEmail = &email
	}
	if req.ContactPhone != nil {
		update.ContactPhone = normalizePhone(*req.ContactPhone)
	}

	p, err := s.prospects.UpdateProspect(ctx, update)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return mapProspect(p), nil
}

// Transition moves a prospect to any stage. A move to closed_won attempts
// exactly one partner invite after the stage is committed; a failed invite
// is reported in the response and never reverts the stage. Moving a
// prospect to the stage it is already in changes nothing.
func (s *Service) Transition(ctx context.Context, actorID, id uuid.UUID, req transport.TransitionRequest) (transport.TransitionResponse, error) {
	if !domain.IsProspectStage(req.Stage) {
		return transport.TransitionResponse{}, apperr.Validation("invalid prospect stage")
	}

	p, previous, err := s.prospects.UpdateStage(ctx, id, req.Stage, s.now())
	if err != nil {
		return transport.TransitionResponse{}, err
	}
	if previous == req.Stage {
		return transport.TransitionResponse{Prospect: mapProspect(p), PreviousStage: previous}, nil
	}
	stageTransitions.WithLabelValues(req.Stage).Inc()

	s.eventBus.Publish(ctx, events.ProspectStageChanged{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: p.ID,
		FromStage:  previous,
		ToStage:    p.Stage,
		ChangedBy:  actorID,
	})

	resp := transport.TransitionResponse{Prospect: mapProspect(p), PreviousStage: previous}
	if req.Stage == domain.ProspectStageClosedWon {
		resp.Invite = s.dispatchInvite(ctx, p)
	}
	return resp, nil
}

func (s *Service) dispatchInvite(ctx context.Context, p repository.Prospect) *transport.InviteResult {
	// The stage is already committed; a client disconnect must not cut the
	// dispatch short.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inviteDispatchTimeout)
	defer cancel()

	invite := PartnerInvite{
		ProspectID:   p.ID,
		ContactName:  p.ContactName,
		ContactEmail: p.ContactEmail,
		CompanyName:  p.CompanyName,
	}

	var (
		status string
		err    error
	)
	if s.invites == nil {
		err = apperr.Unavailable("invite dispatch not configured", nil)
	} else {
		status, err = s.invites.DispatchPartnerInvite(ctx, invite)
	}

	if err != nil {
		inviteDispatches.WithLabelValues(transport.InviteStatusFailed).Inc()
		s.log.DispatchFailed("partner_invite", p.ID.String(), err)
		s.eventBus.Publish(ctx, events.PartnerInviteFailed{
			BaseEvent:    events.NewBaseEvent(),
			ProspectID:   p.ID,
			ContactEmail: p.ContactEmail,
			Reason:       err.Error(),
		})
		return &transport.InviteResult{
			Status:  transport.InviteStatusFailed,
			Message: "stage updated but the partner invite could not be sent",
		}
	}

	inviteDispatches.WithLabelValues(status).Inc()
	s.log.Info("partner invite dispatched", "prospectId", p.ID, "status", status)
	return &transport.InviteResult{Status: status}
}

// ProspectBoard groups prospects by stage in canonical order. Items are the
// most recent page; count and estimated value sum cover every matching
// prospect.
func (s *Service) ProspectBoard(ctx context.Context, req transport.ListProspectsRequest) (transport.ProspectBoardResponse, error) {
	params, err := listParams(req)
	if err != nil {
		return transport.ProspectBoardResponse{}, err
	}
	params.Stage = ""

	items, err := s.prospects.ListProspects(ctx, params)
	if err != nil {
		return transport.ProspectBoardResponse{}, err
	}
	totals, err := s.prospects.StageTotals(ctx, params)
	if err != nil {
		return transport.ProspectBoardResponse{}, err
	}

	board := domain.GroupByStage(items, domain.ProspectStages(),
		func(p repository.Prospect) string { return p.Stage },
		func(p repository.Prospect) *float64 { return p.EstimatedValue },
	)

	byStage := make(map[string]repository.StageTotal, len(totals))
	for _, t := range totals {
		byStage[t.Stage] = t
	}

	resp := transport.ProspectBoardResponse{Columns: make([]transport.BoardColumn[transport.ProspectResponse], 0, len(board.Columns))}
	for _, col := range board.Columns {
		t := byStage[col.Stage]
		resp.Columns = append(resp.Columns, transport.BoardColumn[transport.ProspectResponse]{
			Stage: col.Stage,
			Count: t.Count,
			Sum:   t.Sum,
			Items: mapProspects(col.Items),
		})
	}
	if len(board.Unknown) > 0 {
		resp.Unknown = mapProspects(board.Unknown)
	}
	return resp, nil
}

func (s *Service) GetCampaignStatus(ctx context.Context, partnerID uuid.UUID) (transport.CampaignStatusResponse, error) {
	cs, err := s.campaigns.GetCampaignStatus(ctx, partnerID)
	if err != nil {
		return transport.CampaignStatusResponse{}, err
	}
	return mapCampaign(cs), nil
}

// MyCampaignStatus returns the campaign status of the partner owned by userID.
func (s *Service) MyCampaignStatus(ctx context.Context, userID uuid.UUID) (transport.CampaignStatusResponse, error) {
	partnerID, err := s.campaigns.PartnerIDForUser(ctx, userID)
	if err != nil {
		return transport.CampaignStatusResponse{}, err
	}
	return s.GetCampaignStatus(ctx, partnerID)
}

// UpsertCampaignStatus changes a partner's campaign stage, priority or dates.
// Any stage may be set; only enum membership is checked.
func (s *Service) UpsertCampaignStatus(ctx context.Context, actorID, partnerID uuid.UUID, req transport.UpsertCampaignStatusRequest) (transport.CampaignStatusResponse, error) {
	if req.Stage != nil && !domain.IsCampaignStage(*req.Stage) {
		return transport.CampaignStatusResponse{}, apperr.Validation("invalid campaign stage")
	}
	if req.Priority != nil && !domain.IsPriority(*req.Priority) {
		return transport.CampaignStatusResponse{}, apperr.Validation("invalid campaign priority")
	}

	cs, err := s.campaigns.UpsertCampaignStatus(ctx, repository.CampaignStatusUpsert{
		PartnerID:       partnerID,
		Priority:        req.Priority,
		Stage:           req.Stage,
		LaunchDate:      req.LaunchDate,
		NextMeetingDate: req.NextMeetingDate,
		ConclusionDate:  req.ConclusionDate,
		UpdatedAt:       s.now(),
	})
	if err != nil {
		return transport.CampaignStatusResponse{}, err
	}

	s.eventBus.Publish(ctx, events.CampaignStatusUpdated{
		BaseEvent: events.NewBaseEvent(),
		PartnerID: partnerID,
		Stage:     cs.Stage,
		Priority:  cs.Priority,
		UpdatedBy: actorID,
	})

	return mapCampaign(cs), nil
}

// CampaignBoard groups partners by campaign stage. Partners without a
// campaign status are listed separately.
func (s *Service) CampaignBoard(ctx context.Context) (transport.CampaignBoardResponse, error) {
	cards, err := s.campaigns.ListCampaignCards(ctx)
	if err != nil {
		return transport.CampaignBoardResponse{}, err
	}

	var staged []repository.CampaignCard
	resp := transport.CampaignBoardResponse{}
	for _, card := range cards {
		if card.Status == nil {
			resp.Unassigned = append(resp.Unassigned, mapCard(card))
			continue
		}
		staged = append(staged, card)
	}

	board := domain.GroupByStage(staged, domain.CampaignStages(),
		func(c repository.CampaignCard) string { return c.Status.Stage },
		nil,
	)

	resp.Columns = make([]transport.BoardColumn[transport.CampaignCardResponse], 0, len(board.Columns))
	for _, col := range board.Columns {
		items := make([]transport.CampaignCardResponse, 0, len(col.Items))
		for _, card := range col.Items {
			items = append(items, mapCard(card))
		}
		resp.Columns = append(resp.Columns, transport.BoardColumn[transport.CampaignCardResponse]{
			Stage: col.Stage,
			Count: col.Count,
			Items: items,
		})
	}
	for _, card := range board.Unknown {
		resp.Unknown = append(resp.Unknown, mapCard(card))
	}
	return resp, nil
}

func listParams(req transport.ListProspectsRequest) (repository.ListParams, error) {
	params := repository.ListParams{
		Stage:  req.Stage,
		Search: strings.TrimSpace(req.Search),
		Limit:  req.Limit,
	}
	if req.AssignedTo != "" {
		id, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return repository.ListParams{}, apperr.Validation("invalid assignedTo")
		}
		params.AssignedTo = &id
	}
	return params, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(raw string) *string {
	normalized := phone.NormalizeE164(raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}
