package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/internal/pipeline/domain"
	"campaign_portal_backend/internal/pipeline/repository"
	"campaign_portal_backend/internal/pipeline/transport"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeProspects struct {
	mu          sync.Mutex
	items       map[uuid.UUID]repository.Prospect
	stageWrites int
	// limit caps ListProspects like the repository does. Zero means no cap.
	limit int
}

func newFakeProspects(items ...repository.Prospect) *fakeProspects {
	f := &fakeProspects{items: map[uuid.UUID]repository.Prospect{}}
	for _, p := range items {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProspects) CreateProspect(ctx context.Context, p repository.Prospect) (repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProspects) GetProspect(ctx context.Context, id uuid.UUID) (repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return repository.Prospect{}, apperr.NotFound("prospect not found")
	}
	return p, nil
}

func (f *fakeProspects) matching(params repository.ListParams) []repository.Prospect {
	out := make([]repository.Prospect, 0, len(f.items))
	for _, p := range f.items {
		if params.Stage != "" && p.Stage != params.Stage {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeProspects) ListProspects(ctx context.Context, params repository.ListParams) ([]repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.matching(params)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := params.Limit
	if f.limit > 0 && (limit <= 0 || limit > f.limit) {
		limit = f.limit
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProspects) StageTotals(ctx context.Context, params repository.ListParams) ([]repository.StageTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byStage := map[string]*repository.StageTotal{}
	for _, p := range f.matching(params) {
		t, ok := byStage[p.Stage]
		if !ok {
			t = &repository.StageTotal{Stage: p.Stage}
			byStage[p.Stage] = t
		}
		t.Count++
		if p.EstimatedValue != nil {
			t.Sum += *p.EstimatedValue
		}
	}
	out := make([]repository.StageTotal, 0, len(byStage))
	for _, t := range byStage {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeProspects) UpdateProspect(ctx context.Context, u repository.ProspectUpdate) (repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[u.ID]
	if !ok {
		return repository.Prospect{}, apperr.NotFound("prospect not found")
	}
	if u.CompanyName != nil {
		p.CompanyName = *u.CompanyName
	}
	if u.ContactPhone != nil {
		p.ContactPhone = u.ContactPhone
	}
	if u.EstimatedValue != nil {
		p.EstimatedValue = u.EstimatedValue
	}
	p.UpdatedAt = u.UpdatedAt
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProspects) UpdateStage(ctx context.Context, id uuid.UUID, stage string, at time.Time) (repository.Prospect, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stageWrites++
	p, ok := f.items[id]
	if !ok {
		return repository.Prospect{}, "", apperr.NotFound("prospect not found")
	}
	previous := p.Stage
	if previous == stage {
		return p, previous, nil
	}
	p.Stage = stage
	p.StageUpdatedAt = at
	p.UpdatedAt = at
	f.items[id] = p
	return p, previous, nil
}

type fakeCampaigns struct {
	cards  []repository.CampaignCard
	status map[uuid.UUID]repository.CampaignStatus
	owners map[uuid.UUID]uuid.UUID
}

func (f *fakeCampaigns) PartnerIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := f.owners[userID]
	if !ok {
		return uuid.Nil, apperr.NotFound("partner not found")
	}
	return id, nil
}

func (f *fakeCampaigns) ListCampaignCards(ctx context.Context) ([]repository.CampaignCard, error) {
	return f.cards, nil
}

func (f *fakeCampaigns) GetCampaignStatus(ctx context.Context, partnerID uuid.UUID) (repository.CampaignStatus, error) {
	cs, ok := f.status[partnerID]
	if !ok {
		return repository.CampaignStatus{}, apperr.NotFound("campaign status not found")
	}
	return cs, nil
}

func (f *fakeCampaigns) UpsertCampaignStatus(ctx context.Context, u repository.CampaignStatusUpsert) (repository.CampaignStatus, error) {
	cs, ok := f.status[u.PartnerID]
	if !ok {
		cs = repository.CampaignStatus{PartnerID: u.PartnerID, Priority: domain.PriorityMedium, Stage: domain.CampaignStageAssetCollection}
	}
	if u.Stage != nil {
		cs.Stage = *u.Stage
	}
	if u.Priority != nil {
		cs.Priority = *u.Priority
	}
	cs.UpdatedAt = u.UpdatedAt
	if f.status == nil {
		f.status = map[uuid.UUID]repository.CampaignStatus{}
	}
	f.status[u.PartnerID] = cs
	return cs, nil
}

type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []PartnerInvite
	status  string
	failErr error
}

func (d *fakeDispatcher) DispatchPartnerInvite(ctx context.Context, invite PartnerInvite) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, invite)
	if d.failErr != nil {
		return "", d.failErr
	}
	return d.status, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}
func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestService(prospects *fakeProspects, campaigns *fakeCampaigns, dispatcher InviteDispatcher, bus *recordingBus) *Service {
	svc := New(prospects, campaigns, dispatcher, bus, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedProspect(stage string) repository.Prospect {
	earlier := fixedNow.Add(-48 * time.Hour)
	return repository.Prospect{
		ID:             uuid.New(),
		CompanyName:    "Acme Health",
		ContactName:    "Dana Reyes",
		ContactEmail:   "dana@acme.test",
		Stage:          stage,
		StageUpdatedAt: earlier,
		CreatedAt:      earlier,
		UpdatedAt:      earlier,
	}
}

func TestTransitionAnyStageStampsTimestamp(t *testing.T) {
	for _, from := range domain.ProspectStages() {
		for _, to := range domain.ProspectStages() {
			if from == to {
				continue
			}
			p := seedProspect(from)
			store := newFakeProspects(p)
			svc := newTestService(store, &fakeCampaigns{}, &fakeDispatcher{status: transport.InviteStatusQueued}, &recordingBus{})

			resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: to})
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", from, to, err)
			}
			if resp.Prospect.Stage != to || !resp.Prospect.StageUpdatedAt.Equal(fixedNow) {
				t.Fatalf("%s -> %s: stage or timestamp not updated: %+v", from, to, resp.Prospect)
			}
			if resp.PreviousStage != from {
				t.Fatalf("expected previous stage %s, got %s", from, resp.PreviousStage)
			}
		}
	}
}

func TestTransitionToCurrentStageIsNoop(t *testing.T) {
	for _, stage := range domain.ProspectStages() {
		t.Run(stage, func(t *testing.T) {
			p := seedProspect(stage)
			store := newFakeProspects(p)
			dispatcher := &fakeDispatcher{status: transport.InviteStatusQueued}
			bus := &recordingBus{}
			svc := newTestService(store, &fakeCampaigns{}, dispatcher, bus)

			resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: stage})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !resp.Prospect.StageUpdatedAt.Equal(p.StageUpdatedAt) {
				t.Fatalf("stage_updated_at changed: before=%s after=%s", p.StageUpdatedAt, resp.Prospect.StageUpdatedAt)
			}
			stored, _ := store.GetProspect(context.Background(), p.ID)
			if !stored.StageUpdatedAt.Equal(p.StageUpdatedAt) {
				t.Fatalf("stored stage_updated_at changed to %s", stored.StageUpdatedAt)
			}
			if len(dispatcher.calls) != 0 || resp.Invite != nil {
				t.Fatalf("expected no invite, got %d calls and %+v", len(dispatcher.calls), resp.Invite)
			}
			if names := bus.names(); len(names) != 0 {
				t.Fatalf("expected no events, got %v", names)
			}
		})
	}
}

func TestTransitionClosedWonDispatchesExactlyOneInvite(t *testing.T) {
	p := seedProspect(domain.ProspectStageContractSent)
	dispatcher := &fakeDispatcher{status: transport.InviteStatusQueued}
	bus := &recordingBus{}
	svc := newTestService(newFakeProspects(p), &fakeCampaigns{}, dispatcher, bus)

	resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: domain.ProspectStageClosedWon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.ContactEmail != p.ContactEmail || call.CompanyName != p.CompanyName || call.ContactName != p.ContactName {
		t.Fatalf("unexpected invite payload %+v", call)
	}
	if resp.Invite == nil || resp.Invite.Status != transport.InviteStatusQueued {
		t.Fatalf("expected queued invite, got %+v", resp.Invite)
	}
}

func TestTransitionClosedWonInviteFailureKeepsStage(t *testing.T) {
	p := seedProspect(domain.ProspectStageNegotiation)
	store := newFakeProspects(p)
	dispatcher := &fakeDispatcher{failErr: errors.New("smtp down")}
	bus := &recordingBus{}
	svc := newTestService(store, &fakeCampaigns{}, dispatcher, bus)

	resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: domain.ProspectStageClosedWon})
	if err != nil {
		t.Fatalf("invite failure must not fail the transition, got %v", err)
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(dispatcher.calls))
	}
	if resp.Invite == nil || resp.Invite.Status != transport.InviteStatusFailed || resp.Invite.Message == "" {
		t.Fatalf("expected failed invite result, got %+v", resp.Invite)
	}

	stored, _ := store.GetProspect(context.Background(), p.ID)
	if stored.Stage != domain.ProspectStageClosedWon {
		t.Fatalf("stage must stay closed_won, got %s", stored.Stage)
	}

	names := bus.names()
	if len(names) != 2 || names[0] != "pipeline.prospect.stage_changed" || names[1] != "pipeline.partner_invite.failed" {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestTransitionOtherStagesDoNotDispatch(t *testing.T) {
	p := seedProspect(domain.ProspectStageProspecting)
	dispatcher := &fakeDispatcher{status: transport.InviteStatusSent}
	svc := newTestService(newFakeProspects(p), &fakeCampaigns{}, dispatcher, &recordingBus{})

	resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: domain.ProspectStageClosedLost})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.calls) != 0 || resp.Invite != nil {
		t.Fatalf("expected no invite, got %d calls and %+v", len(dispatcher.calls), resp.Invite)
	}
}

func TestTransitionNilDispatcherReportsFailure(t *testing.T) {
	p := seedProspect(domain.ProspectStageContractSent)
	svc := newTestService(newFakeProspects(p), &fakeCampaigns{}, nil, &recordingBus{})

	resp, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: domain.ProspectStageClosedWon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Invite == nil || resp.Invite.Status != transport.InviteStatusFailed {
		t.Fatalf("expected failed invite, got %+v", resp.Invite)
	}
}

func TestTransitionRejectsUnknownStage(t *testing.T) {
	p := seedProspect(domain.ProspectStageProspecting)
	store := newFakeProspects(p)
	svc := newTestService(store, &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	_, err := svc.Transition(context.Background(), uuid.New(), p.ID, transport.TransitionRequest{Stage: "won"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.stageWrites != 0 {
		t.Fatalf("expected no write, got %d", store.stageWrites)
	}
}

func TestTransitionMissingProspect(t *testing.T) {
	svc := newTestService(newFakeProspects(), &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	_, err := svc.Transition(context.Background(), uuid.New(), uuid.New(), transport.TransitionRequest{Stage: domain.ProspectStageNegotiation})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProspectLeavesStageAlone(t *testing.T) {
	p := seedProspect(domain.ProspectStageNegotiation)
	svc := newTestService(newFakeProspects(p), &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	name := "Acme Clinics"
	phone := "(650) 253-0000"
	resp, err := svc.UpdateProspect(context.Background(), p.ID, transport.UpdateProspectRequest{CompanyName: &name, ContactPhone: &phone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != p.Stage || !resp.StageUpdatedAt.Equal(p.StageUpdatedAt) {
		t.Fatalf("field edit must not change stage: %+v", resp)
	}
	if resp.ContactPhone == nil || *resp.ContactPhone != "+16502530000" {
		t.Fatalf("expected E.164 phone, got %v", resp.ContactPhone)
	}
}

func TestCreateProspectDefaults(t *testing.T) {
	actor := uuid.New()
	bus := &recordingBus{}
	svc := newTestService(newFakeProspects(), &fakeCampaigns{}, &fakeDispatcher{}, bus)

	resp, err := svc.CreateProspect(context.Background(), actor, transport.CreateProspectRequest{
		CompanyName:  "  Bright <b>Dental</b> ",
		ContactName:  "Lee",
		ContactEmail: " Lee@Bright.TEST ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != domain.ProspectStageProspecting {
		t.Fatalf("expected prospecting, got %s", resp.Stage)
	}
	if resp.CompanyName != "Bright Dental" || resp.ContactEmail != "lee@bright.test" {
		t.Fatalf("unexpected normalization %+v", resp)
	}
	if resp.CreatedBy != actor || resp.AssignedTo == nil || *resp.AssignedTo != actor {
		t.Fatalf("creator must own the prospect: %+v", resp)
	}
	if len(bus.names()) != 1 {
		t.Fatalf("expected created event")
	}
}

func TestProspectBoardSumsEstimatedValue(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	a := seedProspect(domain.ProspectStageNegotiation)
	a.EstimatedValue = v(1000)
	b := seedProspect(domain.ProspectStageNegotiation)
	c := seedProspect(domain.ProspectStageClosedWon)
	c.EstimatedValue = v(250)

	svc := newTestService(newFakeProspects(a, b, c), &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	board, err := svc.ProspectBoard(context.Background(), transport.ListProspectsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Columns) != 6 {
		t.Fatalf("expected 6 columns, got %d", len(board.Columns))
	}
	neg := board.Columns[2]
	if neg.Stage != domain.ProspectStageNegotiation || neg.Count != 2 || neg.Sum != 1000 {
		t.Fatalf("unexpected negotiation column %+v", neg)
	}
	won := board.Columns[4]
	if won.Count != 1 || won.Sum != 250 {
		t.Fatalf("unexpected closed_won column %+v", won)
	}
}

func TestProspectBoardTotalsCoverRowsBeyondPage(t *testing.T) {
	store := newFakeProspects()
	store.limit = 200
	for i := 0; i < 250; i++ {
		p := seedProspect(domain.ProspectStageProspecting)
		if i%2 == 1 {
			p.Stage = domain.ProspectStageNegotiation
		}
		value := 10.0
		p.EstimatedValue = &value
		p.CreatedAt = fixedNow.Add(-time.Duration(i) * time.Minute)
		store.items[p.ID] = p
	}
	svc := newTestService(store, &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	board, err := svc.ProspectBoard(context.Background(), transport.ListProspectsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := 0
	for _, col := range board.Columns {
		items += len(col.Items)
	}
	if items != 200 {
		t.Fatalf("expected a 200 item page, got %d", items)
	}

	prospecting, negotiation := board.Columns[0], board.Columns[2]
	if prospecting.Count != 125 || prospecting.Sum != 1250 {
		t.Fatalf("unexpected prospecting column count=%d sum=%v", prospecting.Count, prospecting.Sum)
	}
	if negotiation.Count != 125 || negotiation.Sum != 1250 {
		t.Fatalf("unexpected negotiation column count=%d sum=%v", negotiation.Count, negotiation.Sum)
	}
}

func TestListProspectsTotalCountsAllMatches(t *testing.T) {
	store := newFakeProspects()
	store.limit = 200
	for i := 0; i < 230; i++ {
		p := seedProspect(domain.ProspectStageContractSent)
		store.items[p.ID] = p
	}
	other := seedProspect(domain.ProspectStageClosedLost)
	store.items[other.ID] = other
	svc := newTestService(store, &fakeCampaigns{}, &fakeDispatcher{}, &recordingBus{})

	resp, err := svc.ListProspects(context.Background(), transport.ListProspectsRequest{Stage: domain.ProspectStageContractSent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 200 || resp.Total != 230 {
		t.Fatalf("expected 200 items of 230, got %d of %d", len(resp.Items), resp.Total)
	}
}

func TestCampaignStatusUnknownStage(t *testing.T) {
	partnerID := uuid.New()
	campaigns := &fakeCampaigns{status: map[uuid.UUID]repository.CampaignStatus{
		partnerID: {PartnerID: partnerID, Priority: domain.PriorityHigh, Stage: "concluded"},
	}}
	svc := newTestService(newFakeProspects(), campaigns, &fakeDispatcher{}, &recordingBus{})

	resp, err := svc.GetCampaignStatus(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StageKnown || resp.ProgressPercent != nil {
		t.Fatalf("unknown stage must not report progress: %+v", resp)
	}
}

func TestUpsertCampaignStatus(t *testing.T) {
	partnerID := uuid.New()
	bus := &recordingBus{}
	svc := newTestService(newFakeProspects(), &fakeCampaigns{}, &fakeDispatcher{}, bus)

	stage := domain.CampaignStageCreativeReview
	resp, err := svc.UpsertCampaignStatus(context.Background(), uuid.New(), partnerID, transport.UpsertCampaignStatusRequest{Stage: &stage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.StageKnown || resp.ProgressPercent == nil || *resp.ProgressPercent != 50 {
		t.Fatalf("expected 50%% progress, got %+v", resp)
	}

	bad := "internal_review"
	_, err = svc.UpsertCampaignStatus(context.Background(), uuid.New(), partnerID, transport.UpsertCampaignStatusRequest{Stage: &bad})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCampaignBoardSeparatesUnassigned(t *testing.T) {
	withStatus := uuid.New()
	campaigns := &fakeCampaigns{cards: []repository.CampaignCard{
		{PartnerID: withStatus, CompanyName: "A", Status: &repository.CampaignStatus{PartnerID: withStatus, Stage: domain.CampaignStageLive}},
		{PartnerID: uuid.New(), CompanyName: "B"},
	}}
	svc := newTestService(newFakeProspects(), campaigns, &fakeDispatcher{}, &recordingBus{})

	board, err := svc.CampaignBoard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Unassigned) != 1 {
		t.Fatalf("expected 1 unassigned partner, got %d", len(board.Unassigned))
	}
	live := board.Columns[len(board.Columns)-1]
	if live.Stage != domain.CampaignStageLive || live.Count != 1 {
		t.Fatalf("unexpected live column %+v", live)
	}
}

func TestMyCampaignStatus(t *testing.T) {
	userID, partnerID := uuid.New(), uuid.New()
	campaigns := &fakeCampaigns{
		owners: map[uuid.UUID]uuid.UUID{userID: partnerID},
		status: map[uuid.UUID]repository.CampaignStatus{
			partnerID: {PartnerID: partnerID, Priority: domain.PriorityLow, Stage: domain.CampaignStageAssetCollection},
		},
	}
	svc := newTestService(newFakeProspects(), campaigns, &fakeDispatcher{}, &recordingBus{})

	resp, err := svc.MyCampaignStatus(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PartnerID != partnerID || resp.StageIndex == nil || *resp.StageIndex != 0 {
		t.Fatalf("unexpected status %+v", resp)
	}

	_, err = svc.MyCampaignStatus(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for user without partner, got %v", err)
	}
}
